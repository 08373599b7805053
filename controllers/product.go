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

type CreateProductInput struct {
	Name              string  `json:"name" binding:"required"`
	SKU               string  `json:"sku"`
	Stock             int     `json:"stock" binding:"min=0"`
	Price             float64 `json:"price" binding:"required,min=0"`
	CostPrice         float64 `json:"costPrice" binding:"min=0"`
	LowStockThreshold int     `json:"lowStockThreshold" binding:"min=0"`
}

type UpdateProductInput struct {
	Name              *string  `json:"name"`
	SKU               *string  `json:"sku"`
	Stock             *int     `json:"stock"`
	Price             *float64 `json:"price"`
	CostPrice         *float64 `json:"costPrice"`
	LowStockThreshold *int     `json:"lowStockThreshold"`
	IsActive          *bool    `json:"isActive"`
}

// CreateProduct creates a new retail product for the salon
func CreateProduct(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.SKU != "" {
		var existing models.Product
		if err := config.DB.Where("salon_id = ? AND sku = ?", salonUUID, input.SKU).
			First(&existing).Error; err == nil {
			utils.RespondWithError(c, http.StatusConflict, "Product with this SKU already exists")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
	}

	product := models.Product{
		SalonID:           salonUUID,
		Name:              input.Name,
		SKU:               input.SKU,
		Stock:             input.Stock,
		Price:             input.Price,
		CostPrice:         input.CostPrice,
		LowStockThreshold: input.LowStockThreshold,
		IsActive:          true,
	}
	if product.LowStockThreshold == 0 {
		product.LowStockThreshold = 5
	}

	if err := config.DB.Create(&product).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProducts retrieves all products for the salon
func GetProducts(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var products []models.Product
	if err := config.DB.Where("salon_id = ?", salonUUID).Find(&products).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct retrieves a specific product by ID
func GetProduct(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	productUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var product models.Product
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, productUUID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Product not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct updates an existing product
func UpdateProduct(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	productUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var product models.Product
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, productUUID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Product not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.CostPrice != nil {
		product.CostPrice = *input.CostPrice
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&product).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct soft deletes a product
func DeleteProduct(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	productUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	result := config.DB.Where("salon_id = ? AND id = ?", salonUUID, productUUID).
		Delete(&models.Product{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
