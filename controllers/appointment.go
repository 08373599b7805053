package controllers

import (
	"errors"
	"net/http"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateAppointmentInput struct {
	CustomerID uuid.UUID   `json:"customerId" binding:"required"`
	ServiceIDs []uuid.UUID `json:"serviceIds" binding:"required,min=1"`
	StaffID    uuid.UUID   `json:"staffId" binding:"required"`
	Date       time.Time   `json:"date" binding:"required"`
	Time       string      `json:"time" binding:"required"`
	Notes      string      `json:"notes"`
}

type UpdateAppointmentInput struct {
	ServiceIDs *[]uuid.UUID              `json:"serviceIds"`
	StaffID    *uuid.UUID                `json:"staffId"`
	Date       *time.Time                `json:"date"`
	Time       *string                   `json:"time"`
	Status     *models.AppointmentStatus `json:"status" binding:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Notes      *string                   `json:"notes"`
}

// CreateAppointment books a customer with a stylist
func CreateAppointment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidateTimeSlot(input.Time) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid time slot, expected HH:MM")
		return
	}

	var customer models.Customer
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var staff models.Staff
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, input.StaffID).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Stylist not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Booking requires every selected service to exist at booking time;
	// billing later tolerates ids that have since been removed.
	for _, serviceID := range input.ServiceIDs {
		var service models.Service
		if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, serviceID).
			First(&service).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Service not found: "+serviceID.String())
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	}

	appointment := models.Appointment{
		ID:           uuid.New(),
		SalonID:      salonUUID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		ServiceIDs:   input.ServiceIDs,
		StaffID:      input.StaffID,
		Date:         input.Date,
		Time:         input.Time,
		Status:       models.AppointmentScheduled,
		Notes:        input.Notes,
	}

	if err := config.DB.Create(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	if notifier != nil {
		notifier.NotifyAppointment(salonUUID, &appointment, customer.Phone)
	}

	c.JSON(http.StatusCreated, appointment)
}

// GetAppointments retrieves appointments, optionally filtered by date or status
func GetAppointments(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("salon_id = ?", salonUUID)

	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1))
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Order("date, time").Find(&appointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// GetAppointment retrieves a specific appointment by ID
func GetAppointment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	appointmentUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var appointment models.Appointment
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, appointmentUUID).
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointment updates an existing appointment
func UpdateAppointment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	appointmentUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var appointment models.Appointment
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, appointmentUUID).
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.ServiceIDs != nil {
		appointment.ServiceIDs = *input.ServiceIDs
	}
	if input.StaffID != nil {
		appointment.StaffID = *input.StaffID
	}
	if input.Date != nil {
		appointment.Date = *input.Date
	}
	if input.Time != nil {
		if !utils.ValidateTimeSlot(*input.Time) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid time slot, expected HH:MM")
			return
		}
		appointment.Time = *input.Time
	}
	if input.Status != nil {
		appointment.Status = *input.Status
	}
	if input.Notes != nil {
		appointment.Notes = *input.Notes
	}

	if err := config.DB.Save(&appointment).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// DeleteAppointment soft deletes an appointment
func DeleteAppointment(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	appointmentUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salonUUID, appointmentUUID).
		Delete(&models.Appointment{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete appointment")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}
