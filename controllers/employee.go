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

type AddEmployeeInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type UpdateEmployeeInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
}

// GetEmployees lists login accounts for the salon
func GetEmployees(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var employees []models.User
	if err := config.DB.Select("id, email, name, phone, role, last_login, is_active").
		Where("salon_id = ?", salonUUID).Find(&employees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}

	c.JSON(http.StatusOK, employees)
}

// AddEmployee creates an employee login for the salon
func AddEmployee(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input AddEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	employee := models.User{
		Email:    input.Email,
		Name:     input.Name,
		Phone:    input.Phone,
		Password: input.Password, // Hashed in BeforeCreate hook
		Role:     "employee",
		SalonID:  salonUUID,
	}

	if err := config.DB.Create(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    employee.ID,
		"email": employee.Email,
		"name":  employee.Name,
		"role":  employee.Role,
	})
}

// UpdateEmployee updates an employee account
func UpdateEmployee(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	employeeUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var employee models.User
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, employeeUUID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		employee.Name = *input.Name
	}
	if input.Phone != nil {
		employee.Phone = *input.Phone
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update employee")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee updated successfully"})
}

// DeleteEmployee soft deletes an employee account; owners cannot be removed
func DeleteEmployee(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	employeeUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ? AND role <> ?", salonUUID, employeeUUID, "owner").
		Delete(&models.User{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete employee")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
