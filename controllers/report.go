// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportController handles all reporting functions
type ReportController struct{}

// AnalyticsSummary represents the analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64           `json:"currentMonthRevenue"`
	MonthGrowth           float64           `json:"monthGrowth"`
	CurrentQuarterRevenue float64           `json:"currentQuarterRevenue"`
	QuarterGrowth         float64           `json:"quarterGrowth"`
	CurrentYearRevenue    float64           `json:"currentYearRevenue"`
	YearGrowth            float64           `json:"yearGrowth"`
	MonthExpenses         float64           `json:"monthExpenses"`
	MonthNetRevenue       float64           `json:"monthNetRevenue"`
	TopServices           []ServiceSummary  `json:"topServices"`
	TopCustomers          []CustomerSummary `json:"topCustomers"`
	StaffCommission       []StaffCommission `json:"staffCommission"`
	QuickStats            QuickStatistics   `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type CustomerSummary struct {
	Name   string  `json:"name"`
	Visits int     `json:"visits"`
	Spent  float64 `json:"spent"`
}

type StaffCommission struct {
	Name       string  `json:"name"`
	Revenue    float64 `json:"revenue"`
	Commission float64 `json:"commission"`
}

type QuickStatistics struct {
	TotalCustomers   int     `json:"totalCustomers"`
	TotalBills       int     `json:"totalBills"`
	AvgMonthlyVisits float64 `json:"avgMonthlyVisits"`
	AvgBillValue     float64 `json:"avgBillValue"`
}

// GetReportAnalytics returns the complete analytics summary
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	currentLocation := now.Location()

	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, currentLocation)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	currentMonthRevenue, err := rc.getRevenue(salonUUID, firstOfMonth, lastOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly revenue")
		return
	}

	lastMonthRevenue, err := rc.getRevenue(salonUUID,
		firstOfMonth.AddDate(0, -1, 0),
		lastOfMonth.AddDate(0, -1, 0))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last month revenue")
		return
	}

	currentQuarterRevenue, err := rc.getRevenue(salonUUID,
		rc.getQuarterStart(now),
		rc.getQuarterEnd(now))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quarterly revenue")
		return
	}

	lastQuarterRevenue, err := rc.getRevenue(salonUUID,
		rc.getQuarterStart(now).AddDate(0, -3, 0),
		rc.getQuarterEnd(now).AddDate(0, -3, 0))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last quarter revenue")
		return
	}

	currentYearRevenue, err := rc.getRevenue(salonUUID,
		time.Date(currentYear, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear, 12, 31, 23, 59, 59, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get yearly revenue")
		return
	}

	lastYearRevenue, err := rc.getRevenue(salonUUID,
		time.Date(currentYear-1, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear-1, 12, 31, 23, 59, 59, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last year revenue")
		return
	}

	monthGrowth := rc.calculateGrowthPercentage(currentMonthRevenue, lastMonthRevenue)
	quarterGrowth := rc.calculateGrowthPercentage(currentQuarterRevenue, lastQuarterRevenue)
	yearGrowth := rc.calculateGrowthPercentage(currentYearRevenue, lastYearRevenue)

	monthExpenses, err := rc.getExpenses(salonUUID, firstOfMonth, lastOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly expenses")
		return
	}

	topServices, err := rc.getTopServices(salonUUID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top services")
		return
	}

	topCustomers, err := rc.getTopCustomers(salonUUID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top customers")
		return
	}

	staffCommission, err := rc.getStaffCommission(salonUUID, firstOfMonth, lastOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get staff commission")
		return
	}

	quickStats, err := rc.getQuickStatistics(salonUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quick statistics")
		return
	}

	summary := AnalyticsSummary{
		CurrentMonthRevenue:   currentMonthRevenue,
		MonthGrowth:           monthGrowth,
		CurrentQuarterRevenue: currentQuarterRevenue,
		QuarterGrowth:         quarterGrowth,
		CurrentYearRevenue:    currentYearRevenue,
		YearGrowth:            yearGrowth,
		MonthExpenses:         monthExpenses,
		MonthNetRevenue:       currentMonthRevenue - monthExpenses,
		TopServices:           topServices,
		TopCustomers:          topCustomers,
		StaffCommission:       staffCommission,
		QuickStats:            quickStats,
	}

	c.JSON(http.StatusOK, summary)
}

// Helper functions for reports

func (rc *ReportController) getRevenue(salonID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := config.DB.Model(&models.Bill{}).
		Where("salon_id = ? AND bill_date BETWEEN ? AND ? AND status <> ?",
			salonID, start, end, models.BillRefunded).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) getExpenses(salonID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := config.DB.Model(&models.Expense{}).
		Where("salon_id = ? AND expense_date BETWEEN ? AND ? AND deleted_at IS NULL", salonID, start, end).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func (rc *ReportController) getQuarterEnd(date time.Time) time.Time {
	return rc.getQuarterStart(date).AddDate(0, 3, -1)
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (rc *ReportController) getTopServices(salonID uuid.UUID, start, end time.Time, limit int) ([]ServiceSummary, error) {
	var services []ServiceSummary

	err := config.DB.Table("bill_items").
		Select("bill_items.name, SUM(bill_items.quantity) as count, SUM(bill_items.total_price) as revenue").
		Joins("JOIN bills ON bills.id = bill_items.bill_id").
		Where("bills.salon_id = ? AND bills.bill_date BETWEEN ? AND ? AND bills.status <> ? AND bill_items.kind = ?",
			salonID, start, end, models.BillRefunded, models.ItemService).
		Group("bill_items.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error

	return services, err
}

func (rc *ReportController) getTopCustomers(salonID uuid.UUID, start, end time.Time, limit int) ([]CustomerSummary, error) {
	var customers []CustomerSummary

	err := config.DB.Table("bills").
		Select("customers.name, COUNT(bills.id) as visits, SUM(bills.total) as spent").
		Joins("JOIN customers ON customers.id = bills.customer_id").
		Where("bills.salon_id = ? AND bills.bill_date BETWEEN ? AND ? AND bills.status <> ? AND customers.deleted_at IS NULL",
			salonID, start, end, models.BillRefunded).
		Group("customers.name").
		Order("spent DESC").
		Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	if len(customers) > limit {
		customers = customers[:limit]
	}
	return customers, nil
}

// getStaffCommission attributes each bill's total to the stylist on its
// originating appointment; walk-in bills carry no attribution.
func (rc *ReportController) getStaffCommission(salonID uuid.UUID, start, end time.Time) ([]StaffCommission, error) {
	type row struct {
		Name           string
		CommissionRate float64
		Revenue        float64
	}
	var rows []row

	err := config.DB.Table("bills").
		Select("staffs.name, staffs.commission_rate, SUM(bills.total) as revenue").
		Joins("JOIN appointments ON appointments.id = bills.appointment_id").
		Joins("JOIN staffs ON staffs.id = appointments.staff_id").
		Where("bills.salon_id = ? AND bills.bill_date BETWEEN ? AND ? AND bills.status <> ? AND staffs.deleted_at IS NULL",
			salonID, start, end, models.BillRefunded).
		Group("staffs.name, staffs.commission_rate").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	commissions := make([]StaffCommission, 0, len(rows))
	for _, r := range rows {
		commissions = append(commissions, StaffCommission{
			Name:       r.Name,
			Revenue:    r.Revenue,
			Commission: r.Revenue * r.CommissionRate / 100,
		})
	}
	return commissions, nil
}

func (rc *ReportController) getQuickStatistics(salonID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics

	var totalCustomers int64
	if err := config.DB.Model(&models.Customer{}).
		Where("salon_id = ? AND deleted_at IS NULL", salonID).
		Count(&totalCustomers).Error; err != nil {
		return stats, err
	}
	stats.TotalCustomers = int(totalCustomers)

	var totalBills int64
	if err := config.DB.Model(&models.Bill{}).
		Where("salon_id = ?", salonID).
		Count(&totalBills).Error; err != nil {
		return stats, err
	}
	stats.TotalBills = int(totalBills)

	var avgVisits float64
	err := config.DB.Raw(`
		SELECT COALESCE(AVG(visits), 0) FROM (
			SELECT COUNT(*) as visits
			FROM bills
			WHERE salon_id = ?
			GROUP BY DATE_TRUNC('month', bill_date)
		) monthly_visits
	`, salonID).Scan(&avgVisits).Error
	if err != nil {
		return stats, err
	}
	stats.AvgMonthlyVisits = avgVisits

	var totalRevenue float64
	if err := config.DB.Model(&models.Bill{}).
		Where("salon_id = ? AND status <> ?", salonID, models.BillRefunded).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return stats, err
	}

	if stats.TotalBills > 0 {
		stats.AvgBillValue = totalRevenue / float64(stats.TotalBills)
	}

	return stats, nil
}
