package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salondesk-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Salon{},
		&models.User{},
		&models.LoyaltySetting{},
		&models.NotificationSetting{},
		&models.Customer{},
		&models.Service{},
		&models.Product{},
		&models.Staff{},
		&models.Appointment{},
		&models.Bill{},
		&models.BillItem{},
		&models.PaymentTransaction{},
		&models.NotificationLog{},
	)
	require.NoError(t, err)
	return db
}

type fixture struct {
	db          *gorm.DB
	billing     *BillingService
	salon       models.Salon
	customer    models.Customer
	service     models.Service
	appointment models.Appointment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	salon := models.Salon{ID: uuid.New(), Name: "Velvet Chair", TaxRate: 18}
	require.NoError(t, db.Create(&salon).Error)

	require.NoError(t, db.Create(&models.LoyaltySetting{
		SalonID:          salon.ID,
		Enabled:          true,
		SpendForOnePoint: 100,
		PointValue:       1,
	}).Error)

	customer := models.Customer{
		SalonID:         salon.ID,
		CreatedByUserID: uuid.New(),
		Name:            "Priya Sharma",
		Phone:           "9876543210",
		WalletBalance:   500,
		LoyaltyPoints:   20,
	}
	require.NoError(t, db.Create(&customer).Error)

	service := models.Service{
		SalonID: salon.ID,
		Name:    "Hair Color",
		Price:   800,
	}
	require.NoError(t, db.Create(&service).Error)

	appointment := models.Appointment{
		SalonID:      salon.ID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		ServiceIDs:   models.UUIDList{service.ID},
		StaffID:      uuid.New(),
		Date:         time.Now(),
		Time:         "10:00",
		Status:       models.AppointmentScheduled,
	}
	require.NoError(t, db.Create(&appointment).Error)

	return &fixture{
		db:          db,
		billing:     NewBillingService(db, nil),
		salon:       salon,
		customer:    customer,
		service:     service,
		appointment: appointment,
	}
}

func (f *fixture) reloadCustomer(t *testing.T) models.Customer {
	t.Helper()
	var c models.Customer
	require.NoError(t, f.db.First(&c, "id = ?", f.customer.ID).Error)
	return c
}

func (f *fixture) reloadAppointment(t *testing.T) models.Appointment {
	t.Helper()
	var a models.Appointment
	require.NoError(t, f.db.First(&a, "id = ?", f.appointment.ID).Error)
	return a
}

func TestBuildFromAppointment(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)
	require.Nil(t, result.ExistingPartial)

	draft := result.Draft
	require.Len(t, draft.Items, 1)
	require.Equal(t, "Hair Color", draft.Items[0].Name)
	require.Equal(t, 800.0, draft.Subtotal)
	require.Equal(t, 144.0, draft.Tax)
	require.Equal(t, 944.0, draft.Total)
	require.Equal(t, f.customer.Name, draft.CustomerName)
	require.Equal(t, uuid.Nil, draft.ID, "draft must not be persisted")
}

func TestBuildFromAppointmentSkipsStaleServices(t *testing.T) {
	f := newFixture(t)

	f.appointment.ServiceIDs = models.UUIDList{f.service.ID, uuid.New()}
	require.NoError(t, f.db.Save(&f.appointment).Error)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)
	require.Len(t, result.Draft.Items, 1, "unresolvable service ids are dropped, not errors")
}

func TestBuildFromAppointmentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.billing.BuildFromAppointment(f.salon.ID, uuid.New(), models.ContextCheckout)
	require.ErrorIs(t, err, ErrAppointmentNotFound)

	// Another salon's appointment is invisible too
	_, err = f.billing.BuildFromAppointment(uuid.New(), f.appointment.ID, models.ContextCheckout)
	require.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestFinalizeFullPayment(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)

	bill, err := f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{PaymentMode: models.PayCash})
	require.NoError(t, err)

	require.Equal(t, models.BillPaid, bill.Status)
	require.Equal(t, 944.0, bill.AmountPaid)
	require.Equal(t, 0.0, bill.DueAmount)
	require.Contains(t, bill.BillNumber, "BILL-")
	require.Equal(t, 9, bill.PointsEarned)

	var persisted models.Bill
	require.NoError(t, f.db.Preload("Items").Preload("Payments").First(&persisted, "id = ?", bill.ID).Error)
	require.Len(t, persisted.Items, 1)
	require.Len(t, persisted.Payments, 1)
	require.Equal(t, "Full Payment", persisted.Payments[0].Note)

	customer := f.reloadCustomer(t)
	require.Equal(t, 1, customer.TotalVisits)
	require.Equal(t, 944.0, customer.TotalSpent)
	require.Equal(t, 29, customer.LoyaltyPoints)
	require.NotNil(t, customer.LastVisit)

	require.Equal(t, models.AppointmentCompleted, f.reloadAppointment(t).Status)
}

func TestPartialCheckoutStillCompletesAppointment(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)

	bill, err := f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  400,
		IsPartial:   true,
	})
	require.NoError(t, err)

	require.Equal(t, models.BillPartial, bill.Status)
	require.Equal(t, 544.0, bill.DueAmount)

	// The visit happened; the money being owed does not keep the booking open
	require.Equal(t, models.AppointmentCompleted, f.reloadAppointment(t).Status)
}

func TestAdvanceLeavesAppointmentScheduled(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextAdvance)
	require.NoError(t, err)

	_, err = f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayUPI,
		AmountPaid:  300,
		IsPartial:   true,
	})
	require.NoError(t, err)

	require.Equal(t, models.AppointmentScheduled, f.reloadAppointment(t).Status)
}

func TestSecondAdvanceRejected(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextAdvance)
	require.NoError(t, err)
	_, err = f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  300,
		IsPartial:   true,
	})
	require.NoError(t, err)

	_, err = f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextAdvance)
	require.ErrorIs(t, err, ErrAdvanceExists)
}

func TestCheckoutAfterAdvanceReturnsExistingPartial(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextAdvance)
	require.NoError(t, err)
	advance, err := f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  300,
		IsPartial:   true,
	})
	require.NoError(t, err)

	result, err = f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)
	require.Nil(t, result.Draft)
	require.NotNil(t, result.ExistingPartial)
	require.Equal(t, advance.ID, result.ExistingPartial.ID)
	require.Equal(t, 644.0, result.ExistingPartial.DueAmount)
}

func TestSettleBalance(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)
	bill, err := f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  400,
		IsPartial:   true,
	})
	require.NoError(t, err)

	settled, err := f.billing.Settle(f.salon.ID, bill.ID, 544, models.PayUPI)
	require.NoError(t, err)
	require.Equal(t, models.BillPaid, settled.Status)
	require.Equal(t, 944.0, settled.AmountPaid)
	require.Equal(t, 0.0, settled.DueAmount)
	require.Equal(t, settled.Total, settled.AmountPaid+settled.DueAmount)
	require.Len(t, settled.Payments, 2)
	require.Equal(t, "Balance Settlement", settled.Payments[1].Note)

	// Nothing left to settle
	_, err = f.billing.Settle(f.salon.ID, bill.ID, 10, models.PayCash)
	require.ErrorIs(t, err, ErrNoBalanceDue)
}

func TestSettleValidatesAmount(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)
	bill, err := f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  400,
		IsPartial:   true,
	})
	require.NoError(t, err)

	_, err = f.billing.Settle(f.salon.ID, bill.ID, 0, models.PayCash)
	require.ErrorIs(t, err, ErrSettleAmount)

	_, err = f.billing.Settle(f.salon.ID, bill.ID, 1000, models.PayCash)
	require.ErrorIs(t, err, ErrSettleAmount)

	_, err = f.billing.Settle(f.salon.ID, uuid.New(), 100, models.PayCash)
	require.ErrorIs(t, err, ErrBillNotFound)
}

func TestPartialSettleStaysPartial(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)
	bill, err := f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  400,
		IsPartial:   true,
	})
	require.NoError(t, err)

	settled, err := f.billing.Settle(f.salon.ID, bill.ID, 200, models.PayCard)
	require.NoError(t, err)
	require.Equal(t, models.BillPartial, settled.Status)
	require.Equal(t, 344.0, settled.DueAmount)
	require.Equal(t, settled.Total, settled.AmountPaid+settled.DueAmount)
}

func TestRefundIsTerminal(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)
	bill, err := f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  400,
		IsPartial:   true,
	})
	require.NoError(t, err)

	// A partial bill can be refunded; what was collected so far is written off
	refunded, err := f.billing.Refund(f.salon.ID, bill.ID)
	require.NoError(t, err)
	require.Equal(t, models.BillRefunded, refunded.Status)

	_, err = f.billing.Refund(f.salon.ID, bill.ID)
	require.ErrorIs(t, err, ErrBillRefunded)

	_, err = f.billing.Settle(f.salon.ID, bill.ID, 100, models.PayCash)
	require.ErrorIs(t, err, ErrBillRefunded)
}

func TestWalletPaymentDebitsBalance(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)

	_, err = f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PayWallet,
		AmountPaid:  300,
		IsPartial:   true,
	})
	require.NoError(t, err)

	require.Equal(t, 200.0, f.reloadCustomer(t).WalletBalance)
}

func TestSplitWalletPortionDebitsBalance(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)

	_, err = f.billing.Finalize(f.salon.ID, result.Draft, FinalizeInput{
		PaymentMode: models.PaySplit,
		Split:       &SplitBreakdown{Cash: 644, Wallet: 300},
	})
	require.NoError(t, err)

	require.Equal(t, 200.0, f.reloadCustomer(t).WalletBalance)
}

func TestPointsRedemptionDebitsCustomer(t *testing.T) {
	f := newFixture(t)

	result, err := f.billing.BuildFromAppointment(f.salon.ID, f.appointment.ID, models.ContextCheckout)
	require.NoError(t, err)
	draft := result.Draft

	// Redeem 10 of the customer's 20 points (worth 1 each)
	totals := ComputeTotals(draft.Items, 0, models.DiscountAmount, 10, f.salon.TaxRate, 1)
	draft.LoyaltyDiscount = totals.LoyaltyDiscount
	draft.Total = totals.Total

	bill, err := f.billing.Finalize(f.salon.ID, draft, FinalizeInput{
		PaymentMode:    models.PayCash,
		PointsRedeemed: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 934.0, bill.Total)
	require.Equal(t, 9, bill.PointsEarned)

	// 20 - 10 redeemed + 9 earned
	require.Equal(t, 19, f.reloadCustomer(t).LoyaltyPoints)
}

func TestProductSaleLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)

	product := models.Product{
		SalonID: f.salon.ID,
		Name:    "Argan Oil Serum",
		SKU:     "SER-01",
		Stock:   10,
		Price:   450,
	}
	require.NoError(t, f.db.Create(&product).Error)

	draft := f.billing.BuildBlank(f.salon.ID)
	productID := product.ID
	draft.Items = []models.BillItem{{
		Kind:       models.ItemProduct,
		ProductID:  &productID,
		Name:       product.Name,
		UnitPrice:  product.Price,
		Quantity:   2,
		TotalPrice: 900,
	}}
	totals := ComputeTotals(draft.Items, 0, models.DiscountAmount, 0, 0, 0)
	draft.Subtotal = totals.Subtotal
	draft.Total = totals.Total

	bill, err := f.billing.Finalize(f.salon.ID, draft, FinalizeInput{PaymentMode: models.PayCash})
	require.NoError(t, err)
	require.Equal(t, 900.0, bill.Total)

	var reloaded models.Product
	require.NoError(t, f.db.First(&reloaded, "id = ?", product.ID).Error)
	require.Equal(t, 10, reloaded.Stock, "billing records the sale without adjusting inventory")
}

func TestWalkInBlankDraft(t *testing.T) {
	f := newFixture(t)

	draft := f.billing.BuildBlank(f.salon.ID)
	require.Equal(t, "Walk-in Customer", draft.CustomerName)
	require.Nil(t, draft.AppointmentID)
	require.Nil(t, draft.CustomerID)
	require.Equal(t, models.ContextCheckout, draft.Context)
}

func TestNotificationDeliveryRespectsSettings(t *testing.T) {
	f := newFixture(t)
	notifier := &NotificationService{db: f.db}

	// No settings row at all: nothing is delivered or logged
	notifier.Deliver(f.salon.ID, NotifyBill, nil, "9876543210", "hello")

	require.NoError(t, f.db.Create(&models.NotificationSetting{
		SalonID:     f.salon.ID,
		Enabled:     false,
		BillTrigger: true,
		Provider:    "manual",
	}).Error)
	notifier.Deliver(f.salon.ID, NotifyBill, nil, "9876543210", "hello")

	var count int64
	require.NoError(t, f.db.Model(&models.NotificationLog{}).Count(&count).Error)
	require.Zero(t, count, "master switch off suppresses delivery")

	require.NoError(t, f.db.Model(&models.NotificationSetting{}).
		Where("salon_id = ?", f.salon.ID).
		Update("enabled", true).Error)
	notifier.Deliver(f.salon.ID, NotifyBill, nil, "9876543210", "hello")

	var entry models.NotificationLog
	require.NoError(t, f.db.First(&entry).Error)
	require.Equal(t, "composed", entry.Status)
	require.Equal(t, "link", entry.Channel)
}
