package controllers

import (
	"net/http"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateSalonInput struct {
	Name    *string  `json:"name"`
	Address *string  `json:"address"`
	GSTIN   *string  `json:"gstin"`
	Phone   *string  `json:"phone"`
	Logo    *string  `json:"logo"`
	TaxRate *float64 `json:"taxRate" binding:"omitempty,min=0,max=100"`
}

type UpdateLoyaltyInput struct {
	Enabled          *bool    `json:"enabled"`
	SpendForOnePoint *float64 `json:"spendForOnePoint" binding:"omitempty,gt=0"`
	PointValue       *float64 `json:"pointValue" binding:"omitempty,min=0"`
}

type UpdateNotificationsInput struct {
	Enabled                 *bool   `json:"enabled"`
	BillTrigger             *bool   `json:"billTrigger"`
	AppointmentConfirmation *bool   `json:"appointmentConfirmation"`
	StaffReport             *bool   `json:"staffReport"`
	Provider                *string `json:"provider" binding:"omitempty,oneof=manual twilio"`
}

// GetProfile returns the salon profile plus loyalty and notification settings
func GetProfile(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	var loyalty models.LoyaltySetting
	config.DB.Where("salon_id = ?", salonUUID).First(&loyalty)

	var notifications models.NotificationSetting
	config.DB.Where("salon_id = ?", salonUUID).First(&notifications)

	c.JSON(http.StatusOK, gin.H{
		"salon": gin.H{
			"name":         salon.Name,
			"address":      salon.Address,
			"gstin":        salon.GSTIN,
			"phone":        salon.Phone,
			"logo":         salon.Logo,
			"taxRate":      salon.TaxRate,
			"workingHours": salon.WorkingHours,
		},
		"loyalty": gin.H{
			"enabled":          loyalty.Enabled,
			"spendForOnePoint": loyalty.SpendForOnePoint,
			"pointValue":       loyalty.PointValue,
		},
		"notifications": gin.H{
			"enabled":                 notifications.Enabled,
			"billTrigger":             notifications.BillTrigger,
			"appointmentConfirmation": notifications.AppointmentConfirmation,
			"staffReport":             notifications.StaffReport,
			"provider":                notifications.Provider,
		},
	})
}

// UpdateSalonProfile updates shop details; taxRate feeds every future draft
func UpdateSalonProfile(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input UpdateSalonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		return
	}

	if input.Name != nil {
		salon.Name = *input.Name
	}
	if input.Address != nil {
		salon.Address = *input.Address
	}
	if input.GSTIN != nil {
		salon.GSTIN = *input.GSTIN
	}
	if input.Phone != nil {
		salon.Phone = *input.Phone
	}
	if input.Logo != nil {
		salon.Logo = *input.Logo
	}
	if input.TaxRate != nil {
		salon.TaxRate = *input.TaxRate
	}

	if err := config.DB.Save(&salon).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update salon profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Salon profile updated"})
}

// UpdateWorkingHours replaces the weekly schedule blob
func UpdateWorkingHours(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input struct {
		WorkingHours models.JSONB `json:"workingHours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := config.DB.Model(&models.Salon{}).Where("id = ?", salonUUID).
		Update("working_hours", input.WorkingHours).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update working hours")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Working hours updated"})
}

// UpdateLoyaltySettings updates point earning and redemption configuration
func UpdateLoyaltySettings(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input UpdateLoyaltyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var loyalty models.LoyaltySetting
	if err := config.DB.Where("salon_id = ?", salonUUID).First(&loyalty).Error; err != nil {
		loyalty = models.LoyaltySetting{SalonID: salonUUID, SpendForOnePoint: 100, PointValue: 1}
	}

	if input.Enabled != nil {
		loyalty.Enabled = *input.Enabled
	}
	if input.SpendForOnePoint != nil {
		loyalty.SpendForOnePoint = *input.SpendForOnePoint
	}
	if input.PointValue != nil {
		loyalty.PointValue = *input.PointValue
	}

	if err := config.DB.Save(&loyalty).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update loyalty settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Loyalty settings updated"})
}

// UpdateNotifications updates the master switch, triggers and provider
func UpdateNotifications(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input UpdateNotificationsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var settings models.NotificationSetting
	if err := config.DB.Where("salon_id = ?", salonUUID).First(&settings).Error; err != nil {
		settings = models.NotificationSetting{SalonID: salonUUID, Provider: "manual"}
	}

	if input.Enabled != nil {
		settings.Enabled = *input.Enabled
	}
	if input.BillTrigger != nil {
		settings.BillTrigger = *input.BillTrigger
	}
	if input.AppointmentConfirmation != nil {
		settings.AppointmentConfirmation = *input.AppointmentConfirmation
	}
	if input.StaffReport != nil {
		settings.StaffReport = *input.StaffReport
	}
	if input.Provider != nil {
		settings.Provider = *input.Provider
	}

	if err := config.DB.Save(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification settings updated"})
}
