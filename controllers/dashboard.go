package controllers

import (
	"net/http"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
)

type TodayAppointment struct {
	ID           string `json:"id"`
	CustomerName string `json:"customerName"`
	Time         string `json:"time"`
	Status       string `json:"status"`
}

type LowStockProduct struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// GetDashboardOverview returns the till home screen numbers. Refunded bills
// are excluded from every revenue figure.
func GetDashboardOverview(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	dayStart := utils.BeginningOfDay(now)

	var totalCustomers int64
	config.DB.Model(&models.Customer{}).
		Where("salon_id = ? AND deleted_at IS NULL", salonUUID).
		Count(&totalCustomers)

	var monthlyRevenue float64
	config.DB.Model(&models.Bill{}).
		Where("salon_id = ? AND bill_date >= ? AND status <> ?", salonUUID, firstOfMonth, models.BillRefunded).
		Select("COALESCE(SUM(total), 0)").Scan(&monthlyRevenue)

	var totalBills int64
	config.DB.Model(&models.Bill{}).
		Where("salon_id = ?", salonUUID).
		Count(&totalBills)

	// Money still owed on partial bills
	var outstandingDues float64
	config.DB.Model(&models.Bill{}).
		Where("salon_id = ? AND status = ?", salonUUID, models.BillPartial).
		Select("COALESCE(SUM(due_amount), 0)").Scan(&outstandingDues)

	var todayCount int64
	config.DB.Model(&models.Appointment{}).
		Where("salon_id = ? AND deleted_at IS NULL AND date >= ? AND date < ?",
			salonUUID, dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&todayCount)

	var todayAppointments []TodayAppointment
	config.DB.Model(&models.Appointment{}).
		Select("id, customer_name, time, status").
		Where("salon_id = ? AND deleted_at IS NULL AND date >= ? AND date < ?",
			salonUUID, dayStart, dayStart.AddDate(0, 0, 1)).
		Order("time").
		Limit(10).
		Scan(&todayAppointments)

	var lowStock []LowStockProduct
	config.DB.Model(&models.Product{}).
		Select("name, stock").
		Where("salon_id = ? AND deleted_at IS NULL AND is_active = ? AND stock <= low_stock_threshold", salonUUID, true).
		Order("stock").
		Limit(10).
		Scan(&lowStock)

	response := gin.H{
		"totalCustomers":    totalCustomers,
		"monthlyRevenue":    monthlyRevenue,
		"totalBills":        totalBills,
		"outstandingDues":   outstandingDues,
		"todayAppointments": gin.H{"count": todayCount, "list": todayAppointments},
		"lowStockProducts":  lowStock,
	}

	c.JSON(http.StatusOK, response)
}
