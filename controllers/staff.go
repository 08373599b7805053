package controllers

import (
	"errors"
	"net/http"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateStaffInput struct {
	Name           string  `json:"name" binding:"required"`
	Phone          string  `json:"phone"`
	Role           string  `json:"role"`
	CommissionRate float64 `json:"commissionRate" binding:"min=0,max=100"`
}

type UpdateStaffInput struct {
	Name           *string  `json:"name"`
	Phone          *string  `json:"phone"`
	Role           *string  `json:"role"`
	CommissionRate *float64 `json:"commissionRate"`
	IsActive       *bool    `json:"isActive"`
}

// CreateStaff adds a stylist/technician to the salon
func CreateStaff(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input CreateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	staff := models.Staff{
		SalonID:        salonUUID,
		Name:           input.Name,
		Phone:          input.Phone,
		Role:           input.Role,
		CommissionRate: input.CommissionRate,
		IsActive:       true,
	}
	if staff.Role == "" {
		staff.Role = "Stylist"
	}

	if err := config.DB.Create(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create staff member")
		return
	}

	c.JSON(http.StatusCreated, staff)
}

// GetStaff retrieves all staff members for the salon
func GetStaff(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var staff []models.Staff
	if err := config.DB.Where("salon_id = ?", salonUUID).Find(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve staff")
		return
	}

	c.JSON(http.StatusOK, staff)
}

// UpdateStaff updates an existing staff member
func UpdateStaff(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	staffUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var staff models.Staff
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, staffUUID).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		staff.Name = *input.Name
	}
	if input.Phone != nil {
		staff.Phone = *input.Phone
	}
	if input.Role != nil {
		staff.Role = *input.Role
	}
	if input.CommissionRate != nil {
		staff.CommissionRate = *input.CommissionRate
	}
	if input.IsActive != nil {
		staff.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update staff member")
		return
	}

	c.JSON(http.StatusOK, staff)
}

// DeleteStaff soft deletes a staff member
func DeleteStaff(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	staffUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salonUUID, staffUUID).
		Delete(&models.Staff{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete staff member")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
}
