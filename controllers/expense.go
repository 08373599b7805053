package controllers

import (
	"errors"
	"net/http"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateExpenseInput struct {
	Title       string     `json:"title" binding:"required"`
	Category    string     `json:"category"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	ExpenseDate *time.Time `json:"expenseDate"`
	Notes       string     `json:"notes"`
}

type UpdateExpenseInput struct {
	Title       *string    `json:"title"`
	Category    *string    `json:"category"`
	Amount      *float64   `json:"amount"`
	ExpenseDate *time.Time `json:"expenseDate"`
	Notes       *string    `json:"notes"`
}

// CreateExpense records an operating expense
func CreateExpense(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	expenseDate := time.Now()
	if input.ExpenseDate != nil {
		expenseDate = *input.ExpenseDate
	}

	expense := models.Expense{
		SalonID:     salonUUID,
		Title:       input.Title,
		Category:    input.Category,
		Amount:      input.Amount,
		ExpenseDate: expenseDate,
		Notes:       input.Notes,
	}
	if expense.Category == "" {
		expense.Category = "General"
	}

	if err := config.DB.Create(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// GetExpenses retrieves all expenses for the salon
func GetExpenses(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var expenses []models.Expense
	if err := config.DB.Where("salon_id = ?", salonUUID).
		Order("expense_date DESC").Find(&expenses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve expenses")
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// UpdateExpense updates an existing expense
func UpdateExpense(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	expenseUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var expense models.Expense
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, expenseUUID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Title != nil {
		expense.Title = *input.Title
	}
	if input.Category != nil {
		expense.Category = *input.Category
	}
	if input.Amount != nil {
		expense.Amount = *input.Amount
	}
	if input.ExpenseDate != nil {
		expense.ExpenseDate = *input.ExpenseDate
	}
	if input.Notes != nil {
		expense.Notes = *input.Notes
	}

	if err := config.DB.Save(&expense).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update expense")
		return
	}

	c.JSON(http.StatusOK, expense)
}

// DeleteExpense removes an expense
func DeleteExpense(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	expenseUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salonUUID, expenseUUID).
		Delete(&models.Expense{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Expense not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
