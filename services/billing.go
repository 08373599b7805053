// services/billing.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAdvanceExists       = errors.New("an advance bill already exists for this appointment")
	ErrBillNotFound        = errors.New("bill not found")
	ErrBillRefunded        = errors.New("bill has been refunded")
	ErrNoBalanceDue        = errors.New("bill has no outstanding balance")
	ErrSettleAmount        = errors.New("settlement amount must be positive and no more than the due amount")
	ErrSplitRequired       = errors.New("split breakdown required for split payments")
)

// BillingService owns the bill lifecycle: draft construction, payment
// finalization, balance settlement and refunds.
type BillingService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewBillingService(db *gorm.DB, notifier *NotificationService) *BillingService {
	return &BillingService{db: db, notifier: notifier}
}

type SplitBreakdown struct {
	Cash   float64 `json:"cash"`
	Card   float64 `json:"card"`
	UPI    float64 `json:"upi"`
	Wallet float64 `json:"wallet"`
}

func (s SplitBreakdown) Sum() float64 {
	return s.Cash + s.Card + s.UPI + s.Wallet
}

type Totals struct {
	Subtotal        float64
	Tax             float64
	Discount        float64
	LoyaltyDiscount float64
	Total           float64
}

// ComputeTotals is the single place bill amounts are derived from line items.
// Pure; every caller that changes items, discount or redeemed points must go
// through it so the reviewed draft matches what gets committed.
func ComputeTotals(items []models.BillItem, discountValue float64, discountMode models.DiscountMode, pointsRedeemed int, taxRate, pointValue float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	tax := subtotal * taxRate / 100

	discount := discountValue
	if discountMode == models.DiscountPercent {
		discount = subtotal * discountValue / 100
	}

	loyaltyDiscount := float64(pointsRedeemed) * pointValue

	total := subtotal + tax - discount - loyaltyDiscount
	if total < 0 {
		total = 0
	}

	return Totals{
		Subtotal:        subtotal,
		Tax:             tax,
		Discount:        discount,
		LoyaltyDiscount: loyaltyDiscount,
		Total:           total,
	}
}

// SplitMismatchError reports a split breakdown that does not cover the bill.
type SplitMismatchError struct {
	Sum   float64
	Total float64
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("split amounts add up to %.2f but the bill total is %.2f", e.Sum, e.Total)
}

// ValidateSplit accepts a breakdown whose parts sum to the bill total within
// one currency unit.
func ValidateSplit(split SplitBreakdown, total float64) error {
	if math.Abs(split.Sum()-total) > 1 {
		return &SplitMismatchError{Sum: split.Sum(), Total: total}
	}
	return nil
}

// DraftResult carries either a fresh draft or, for a checkout against an
// appointment that already has a partial bill, the bill to settle instead.
type DraftResult struct {
	Draft           *models.Bill `json:"draft,omitempty"`
	ExistingPartial *models.Bill `json:"existingPartial,omitempty"`
}

// BuildFromAppointment resolves the appointment's services against the
// catalog and produces an unpersisted draft. Service ids that no longer
// resolve are skipped, not treated as errors.
func (s *BillingService) BuildFromAppointment(salonID, appointmentID uuid.UUID, billingCtx models.BillingContext) (*DraftResult, error) {
	var appointment models.Appointment
	if err := s.db.Where("salon_id = ? AND id = ?", salonID, appointmentID).
		First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	var existing models.Bill
	err := s.db.Preload("Items").Preload("Payments").
		Where("salon_id = ? AND appointment_id = ? AND status <> ?", salonID, appointmentID, models.BillRefunded).
		First(&existing).Error
	if err == nil {
		if billingCtx == models.ContextAdvance {
			return nil, ErrAdvanceExists
		}
		if existing.Status == models.BillPartial {
			return &DraftResult{ExistingPartial: &existing}, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var salon models.Salon
	if err := s.db.First(&salon, "id = ?", salonID).Error; err != nil {
		return nil, err
	}

	var items []models.BillItem
	for _, serviceID := range appointment.ServiceIDs {
		var service models.Service
		if err := s.db.Where("salon_id = ? AND id = ?", salonID, serviceID).
			First(&service).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		refID := service.ID
		items = append(items, models.BillItem{
			Kind:       models.ItemService,
			ServiceID:  &refID,
			Name:       service.Name,
			UnitPrice:  service.Price,
			Quantity:   1,
			TotalPrice: service.Price,
		})
	}

	totals := ComputeTotals(items, 0, models.DiscountAmount, 0, salon.TaxRate, 0)

	customerID := appointment.CustomerID
	draft := &models.Bill{
		SalonID:       salonID,
		AppointmentID: &appointment.ID,
		CustomerID:    &customerID,
		CustomerName:  appointment.CustomerName,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		BillDate:      time.Now(),
		Context:       billingCtx,
		Status:        models.BillPaid,
		AmountPaid:    totals.Total,
	}

	if billingCtx == models.ContextAdvance {
		// Operator is expected to enter a smaller amount before finalizing
		draft.IsPartialPayment = true
	}

	return &DraftResult{Draft: draft}, nil
}

// BuildBlank returns an empty walk-in draft for manual item entry.
func (s *BillingService) BuildBlank(salonID uuid.UUID) *models.Bill {
	return &models.Bill{
		SalonID:      salonID,
		CustomerName: "Walk-in Customer",
		BillDate:     time.Now(),
		Context:      models.ContextCheckout,
		Status:       models.BillPaid,
	}
}

type FinalizeInput struct {
	PaymentMode    models.PaymentMode
	AmountPaid     float64
	IsPartial      bool
	Split          *SplitBreakdown
	PointsRedeemed int
}

// applyPayment settles the draft's payment state in memory. The due amount is
// intentionally not clamped: an operator overpay leaves a negative due and the
// bill paid, matching how the till has always behaved.
func applyPayment(bill *models.Bill, in FinalizeInput, loyalty models.LoyaltySetting) error {
	if in.PaymentMode == models.PaySplit && !in.IsPartial {
		if in.Split == nil {
			return ErrSplitRequired
		}
		if err := ValidateSplit(*in.Split, bill.Total); err != nil {
			return err
		}
	}

	paid := bill.Total
	if in.IsPartial {
		paid = in.AmountPaid
	}

	bill.PaymentMode = in.PaymentMode
	bill.IsPartialPayment = in.IsPartial
	bill.AmountPaid = paid
	bill.DueAmount = bill.Total - paid

	if bill.DueAmount > 0 {
		bill.Status = models.BillPartial
	} else {
		bill.Status = models.BillPaid
	}

	if in.Split != nil {
		bill.SplitCash = in.Split.Cash
		bill.SplitCard = in.Split.Card
		bill.SplitUPI = in.Split.UPI
		bill.SplitWallet = in.Split.Wallet
	}

	bill.PointsRedeemed = in.PointsRedeemed
	if loyalty.Enabled && loyalty.SpendForOnePoint > 0 {
		bill.PointsEarned = int(math.Floor(paid / loyalty.SpendForOnePoint))
	}

	note := "Full Payment"
	if bill.DueAmount > 0 {
		note = "Advance Payment"
	}
	bill.Payments = append(bill.Payments, models.PaymentTransaction{
		Amount: paid,
		Mode:   in.PaymentMode,
		Note:   note,
		PaidAt: time.Now(),
	})

	return nil
}

// Finalize commits a draft: decides paid/partial, records the payment
// transaction and applies customer and appointment side effects.
func (s *BillingService) Finalize(salonID uuid.UUID, draft *models.Bill, in FinalizeInput) (*models.Bill, error) {
	var loyalty models.LoyaltySetting
	if err := s.db.Where("salon_id = ?", salonID).First(&loyalty).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := applyPayment(draft, in, loyalty); err != nil {
		return nil, err
	}

	draft.SalonID = salonID
	draft.BillNumber = "BILL-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6)

	if err := s.commitSettlement(draft); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyBill(salonID, draft)
	}

	return draft, nil
}

// commitSettlement is the single seam for the three collection writes a
// settlement touches (bills, customers, appointments). The writes are
// sequential and non-atomic; a failure mid-way leaves the earlier writes in
// place, which matches the behavior callers have always seen.
func (s *BillingService) commitSettlement(bill *models.Bill) error {
	if err := s.db.Create(bill).Error; err != nil {
		return err
	}

	if bill.CustomerID != nil {
		updates := map[string]interface{}{
			"total_visits": gorm.Expr("total_visits + ?", 1),
			"total_spent":  gorm.Expr("total_spent + ?", bill.Total),
			"last_visit":   bill.BillDate,
		}
		pointsDelta := bill.PointsEarned - bill.PointsRedeemed
		if pointsDelta != 0 {
			updates["loyalty_points"] = gorm.Expr("loyalty_points + ?", pointsDelta)
		}
		walletDebit := 0.0
		switch bill.PaymentMode {
		case models.PayWallet:
			walletDebit = bill.AmountPaid
		case models.PaySplit:
			walletDebit = bill.SplitWallet
		}
		if walletDebit != 0 {
			updates["wallet_balance"] = gorm.Expr("wallet_balance - ?", walletDebit)
		}
		if err := s.db.Model(&models.Customer{}).
			Where("id = ?", *bill.CustomerID).
			Updates(updates).Error; err != nil {
			return err
		}
	}

	// Checkout closes the appointment even when the bill stays partial; an
	// advance never touches it.
	if bill.Context == models.ContextCheckout && bill.AppointmentID != nil {
		if err := s.db.Model(&models.Appointment{}).
			Where("id = ?", *bill.AppointmentID).
			Update("status", models.AppointmentCompleted).Error; err != nil {
			return err
		}
	}

	return nil
}

// Settle applies a further payment to a committed partial bill.
func (s *BillingService) Settle(salonID, billID uuid.UUID, amount float64, mode models.PaymentMode) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.Preload("Items").Preload("Payments").
		Where("salon_id = ? AND id = ?", salonID, billID).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}

	if bill.Status == models.BillRefunded {
		return nil, ErrBillRefunded
	}
	if bill.DueAmount <= 0 {
		return nil, ErrNoBalanceDue
	}
	if amount <= 0 || amount > bill.DueAmount {
		return nil, ErrSettleAmount
	}

	bill.AmountPaid += amount
	bill.DueAmount -= amount
	if bill.DueAmount <= 0 {
		bill.Status = models.BillPaid
	} else {
		bill.Status = models.BillPartial
	}

	txn := models.PaymentTransaction{
		BillID: bill.ID,
		Amount: amount,
		Mode:   mode,
		Note:   "Balance Settlement",
		PaidAt: time.Now(),
	}

	if err := s.db.Model(&models.Bill{}).Where("id = ?", bill.ID).
		Updates(map[string]interface{}{
			"amount_paid": bill.AmountPaid,
			"due_amount":  bill.DueAmount,
			"status":      bill.Status,
		}).Error; err != nil {
		return nil, err
	}
	if err := s.db.Create(&txn).Error; err != nil {
		return nil, err
	}
	bill.Payments = append(bill.Payments, txn)

	// Idempotent when the checkout already completed the appointment
	if bill.Context == models.ContextCheckout && bill.AppointmentID != nil {
		if err := s.db.Model(&models.Appointment{}).
			Where("id = ?", *bill.AppointmentID).
			Update("status", models.AppointmentCompleted).Error; err != nil {
			return nil, err
		}
	}

	return &bill, nil
}

// Refund terminally marks a bill refunded. The payment history and amounts are
// left untouched; reporting excludes refunded bills from revenue.
func (s *BillingService) Refund(salonID, billID uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.Preload("Items").Preload("Payments").
		Where("salon_id = ? AND id = ?", salonID, billID).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}

	if bill.Status == models.BillRefunded {
		return nil, ErrBillRefunded
	}

	if err := s.db.Model(&models.Bill{}).Where("id = ?", bill.ID).
		Update("status", models.BillRefunded).Error; err != nil {
		return nil, err
	}
	bill.Status = models.BillRefunded

	return &bill, nil
}
