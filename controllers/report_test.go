package controllers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salondesk-backend/config"
	"salondesk-backend/models"
)

func newReportDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Salon{},
		&models.Customer{},
		&models.Service{},
		&models.Staff{},
		&models.Appointment{},
		&models.Bill{},
		&models.BillItem{},
		&models.PaymentTransaction{},
		&models.Expense{},
	)
	require.NoError(t, err)

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })
	return db
}

type reportFixture struct {
	db          *gorm.DB
	salonID     uuid.UUID
	customer    models.Customer
	staff       models.Staff
	appointment models.Appointment
	start       time.Time
	end         time.Time
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	db := newReportDB(t)

	salon := models.Salon{ID: uuid.New(), Name: "Velvet Chair", TaxRate: 0}
	require.NoError(t, db.Create(&salon).Error)

	customer := models.Customer{
		SalonID:         salon.ID,
		CreatedByUserID: uuid.New(),
		Name:            "Priya Sharma",
		Phone:           "9876543210",
	}
	require.NoError(t, db.Create(&customer).Error)

	staff := models.Staff{
		SalonID:        salon.ID,
		Name:           "Asha",
		CommissionRate: 10,
	}
	require.NoError(t, db.Create(&staff).Error)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	appointment := models.Appointment{
		SalonID:      salon.ID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		ServiceIDs:   models.UUIDList{uuid.New()},
		StaffID:      staff.ID,
		Date:         start.AddDate(0, 0, 10),
		Time:         "10:00",
		Status:       models.AppointmentCompleted,
	}
	require.NoError(t, db.Create(&appointment).Error)

	return &reportFixture{
		db:          db,
		salonID:     salon.ID,
		customer:    customer,
		staff:       staff,
		appointment: appointment,
		start:       start,
		end:         start.AddDate(0, 1, -1),
	}
}

func (f *reportFixture) createBill(t *testing.T, number string, total float64, status models.BillStatus, appointmentID *uuid.UUID, items []models.BillItem) models.Bill {
	t.Helper()
	bill := models.Bill{
		SalonID:       f.salonID,
		BillNumber:    number,
		AppointmentID: appointmentID,
		CustomerID:    &f.customer.ID,
		CustomerName:  f.customer.Name,
		Items:         items,
		Subtotal:      total,
		Total:         total,
		BillDate:      f.start.AddDate(0, 0, 10),
		Context:       models.ContextCheckout,
		PaymentMode:   models.PayCash,
		AmountPaid:    total,
		Status:        status,
	}
	require.NoError(t, f.db.Create(&bill).Error)
	return bill
}

func TestGetRevenueExcludesRefunded(t *testing.T) {
	f := newReportFixture(t)
	rc := ReportController{}

	f.createBill(t, "BILL-1", 1000, models.BillPaid, nil, nil)
	f.createBill(t, "BILL-2", 500, models.BillRefunded, nil, nil)

	revenue, err := rc.getRevenue(f.salonID, f.start, f.end)
	require.NoError(t, err)
	require.Equal(t, 1000.0, revenue, "refunded bills carry no revenue")
}

func TestGetStaffCommission(t *testing.T) {
	f := newReportFixture(t)
	rc := ReportController{}

	f.createBill(t, "BILL-1", 1000, models.BillPaid, &f.appointment.ID, nil)

	commissions, err := rc.getStaffCommission(f.salonID, f.start, f.end)
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	require.Equal(t, "Asha", commissions[0].Name)
	require.Equal(t, 1000.0, commissions[0].Revenue)
	require.Equal(t, 100.0, commissions[0].Commission)
}

func TestGetStaffCommissionExcludesRefunded(t *testing.T) {
	f := newReportFixture(t)
	rc := ReportController{}

	f.createBill(t, "BILL-1", 1000, models.BillPaid, &f.appointment.ID, nil)
	f.createBill(t, "BILL-2", 600, models.BillRefunded, &f.appointment.ID, nil)

	commissions, err := rc.getStaffCommission(f.salonID, f.start, f.end)
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	require.Equal(t, 1000.0, commissions[0].Revenue, "refunded bill must not feed commission")
}

func TestGetTopServicesExcludesRefunded(t *testing.T) {
	f := newReportFixture(t)
	rc := ReportController{}

	serviceItems := func(total float64) []models.BillItem {
		return []models.BillItem{{
			Kind:       models.ItemService,
			Name:       "Hair Color",
			UnitPrice:  total,
			Quantity:   1,
			TotalPrice: total,
		}}
	}
	f.createBill(t, "BILL-1", 800, models.BillPaid, nil, serviceItems(800))
	f.createBill(t, "BILL-2", 800, models.BillRefunded, nil, serviceItems(800))

	services, err := rc.getTopServices(f.salonID, f.start, f.end, 4)
	require.NoError(t, err)
	require.Len(t, services, 1)
	require.Equal(t, 800.0, services[0].Revenue)
	require.Equal(t, 1, services[0].Count)
}
