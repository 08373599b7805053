package services

import (
	"errors"
	"testing"

	"salondesk-backend/models"
)

func serviceItem(name string, price float64, qty int) models.BillItem {
	return models.BillItem{
		Kind:       models.ItemService,
		Name:       name,
		UnitPrice:  price,
		Quantity:   qty,
		TotalPrice: price * float64(qty),
	}
}

func TestComputeTotalsWithTax(t *testing.T) {
	items := []models.BillItem{serviceItem("Hair Color", 800, 1)}

	totals := ComputeTotals(items, 0, models.DiscountAmount, 0, 18, 0)

	if totals.Subtotal != 800 {
		t.Fatalf("expected subtotal 800, got %.2f", totals.Subtotal)
	}
	if totals.Tax != 144 {
		t.Fatalf("expected tax 144, got %.2f", totals.Tax)
	}
	if totals.Total != 944 {
		t.Fatalf("expected total 944, got %.2f", totals.Total)
	}
}

func TestComputeTotalsPercentDiscount(t *testing.T) {
	items := []models.BillItem{serviceItem("Bridal Package", 1000, 1)}

	totals := ComputeTotals(items, 10, models.DiscountPercent, 0, 0, 0)

	if totals.Discount != 100 {
		t.Fatalf("expected discount 100, got %.2f", totals.Discount)
	}
	if totals.Total != 900 {
		t.Fatalf("expected total 900, got %.2f", totals.Total)
	}
}

func TestComputeTotalsLoyaltyRedemption(t *testing.T) {
	items := []models.BillItem{serviceItem("Haircut", 500, 1)}

	totals := ComputeTotals(items, 0, models.DiscountAmount, 50, 0, 2)

	if totals.LoyaltyDiscount != 100 {
		t.Fatalf("expected loyalty discount 100, got %.2f", totals.LoyaltyDiscount)
	}
	if totals.Total != 400 {
		t.Fatalf("expected total 400, got %.2f", totals.Total)
	}
}

func TestComputeTotalsNeverNegative(t *testing.T) {
	items := []models.BillItem{serviceItem("Haircut", 200, 1)}

	// Discount exceeding subtotal clamps the total at zero
	totals := ComputeTotals(items, 500, models.DiscountAmount, 0, 0, 0)
	if totals.Total != 0 {
		t.Fatalf("expected total clamped to 0, got %.2f", totals.Total)
	}

	// Same for point redemption stacked on top of a discount
	totals = ComputeTotals(items, 150, models.DiscountAmount, 100, 0, 5)
	if totals.Total != 0 {
		t.Fatalf("expected total clamped to 0, got %.2f", totals.Total)
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []models.BillItem{
		serviceItem("Haircut", 350, 2),
		serviceItem("Beard Trim", 150, 1),
	}

	first := ComputeTotals(items, 5, models.DiscountPercent, 10, 18, 1)
	second := ComputeTotals(items, 5, models.DiscountPercent, 10, 18, 1)

	if first != second {
		t.Fatalf("expected identical totals, got %+v and %+v", first, second)
	}
}

func TestValidateSplit(t *testing.T) {
	split := SplitBreakdown{Cash: 300, Card: 200, UPI: 444, Wallet: 0}
	if err := ValidateSplit(split, 944); err != nil {
		t.Fatalf("expected exact split accepted, got %v", err)
	}

	// Within one currency unit is tolerated
	split = SplitBreakdown{Cash: 300, Card: 200, UPI: 443.5, Wallet: 0}
	if err := ValidateSplit(split, 944); err != nil {
		t.Fatalf("expected near split accepted, got %v", err)
	}

	split = SplitBreakdown{Cash: 300, Card: 200, UPI: 44, Wallet: 0}
	err := ValidateSplit(split, 944)
	if err == nil {
		t.Fatal("expected mismatched split rejected")
	}
	var mismatch *SplitMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected SplitMismatchError, got %T", err)
	}
	if mismatch.Sum != 544 || mismatch.Total != 944 {
		t.Fatalf("expected mismatch amounts 544/944, got %.2f/%.2f", mismatch.Sum, mismatch.Total)
	}
}

func TestApplyPaymentFullPayment(t *testing.T) {
	bill := &models.Bill{Total: 944}

	err := applyPayment(bill, FinalizeInput{PaymentMode: models.PayCash}, models.LoyaltySetting{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.AmountPaid != 944 || bill.DueAmount != 0 {
		t.Fatalf("expected paid 944 due 0, got %.2f/%.2f", bill.AmountPaid, bill.DueAmount)
	}
	if bill.Status != models.BillPaid {
		t.Fatalf("expected status paid, got %s", bill.Status)
	}
	if len(bill.Payments) != 1 || bill.Payments[0].Note != "Full Payment" {
		t.Fatalf("expected one Full Payment transaction, got %+v", bill.Payments)
	}
}

func TestApplyPaymentPartial(t *testing.T) {
	bill := &models.Bill{Total: 944}

	err := applyPayment(bill, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  400,
		IsPartial:   true,
	}, models.LoyaltySetting{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.DueAmount != 544 {
		t.Fatalf("expected due 544, got %.2f", bill.DueAmount)
	}
	if bill.Status != models.BillPartial {
		t.Fatalf("expected status partial, got %s", bill.Status)
	}
	if bill.AmountPaid+bill.DueAmount != bill.Total {
		t.Fatalf("paid %.2f + due %.2f != total %.2f", bill.AmountPaid, bill.DueAmount, bill.Total)
	}
	if len(bill.Payments) != 1 || bill.Payments[0].Note != "Advance Payment" {
		t.Fatalf("expected one Advance Payment transaction, got %+v", bill.Payments)
	}
	if bill.Payments[0].Amount != 400 {
		t.Fatalf("expected transaction of 400, got %.2f", bill.Payments[0].Amount)
	}
}

// Overpayment is accepted as entered: the due goes negative and the bill is
// paid. Nothing clamps or rejects it.
func TestApplyPaymentOverpayment(t *testing.T) {
	bill := &models.Bill{Total: 500}

	err := applyPayment(bill, FinalizeInput{
		PaymentMode: models.PayCash,
		AmountPaid:  600,
		IsPartial:   true,
	}, models.LoyaltySetting{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.DueAmount != -100 {
		t.Fatalf("expected due -100, got %.2f", bill.DueAmount)
	}
	if bill.Status != models.BillPaid {
		t.Fatalf("expected overpaid bill marked paid, got %s", bill.Status)
	}
}

func TestApplyPaymentEarnsPoints(t *testing.T) {
	bill := &models.Bill{Total: 944}
	loyalty := models.LoyaltySetting{Enabled: true, SpendForOnePoint: 100, PointValue: 1}

	if err := applyPayment(bill, FinalizeInput{PaymentMode: models.PayCard}, loyalty); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.PointsEarned != 9 {
		t.Fatalf("expected 9 points earned on 944, got %d", bill.PointsEarned)
	}
}

func TestApplyPaymentNoPointsWhenDisabled(t *testing.T) {
	bill := &models.Bill{Total: 944}
	loyalty := models.LoyaltySetting{Enabled: false, SpendForOnePoint: 100}

	if err := applyPayment(bill, FinalizeInput{PaymentMode: models.PayCard}, loyalty); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bill.PointsEarned != 0 {
		t.Fatalf("expected no points with loyalty disabled, got %d", bill.PointsEarned)
	}
}

func TestApplyPaymentSplitValidation(t *testing.T) {
	bill := &models.Bill{Total: 944}

	err := applyPayment(bill, FinalizeInput{PaymentMode: models.PaySplit}, models.LoyaltySetting{})
	if !errors.Is(err, ErrSplitRequired) {
		t.Fatalf("expected ErrSplitRequired, got %v", err)
	}

	err = applyPayment(bill, FinalizeInput{
		PaymentMode: models.PaySplit,
		Split:       &SplitBreakdown{Cash: 100},
	}, models.LoyaltySetting{})
	var mismatch *SplitMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected SplitMismatchError, got %v", err)
	}

	bill = &models.Bill{Total: 944}
	err = applyPayment(bill, FinalizeInput{
		PaymentMode: models.PaySplit,
		Split:       &SplitBreakdown{Cash: 300, Card: 200, UPI: 444},
	}, models.LoyaltySetting{})
	if err != nil {
		t.Fatalf("expected balanced split accepted, got %v", err)
	}
	if bill.SplitCash != 300 || bill.SplitCard != 200 || bill.SplitUPI != 444 || bill.SplitWallet != 0 {
		t.Fatalf("expected split breakdown recorded, got %+v", bill)
	}
}

// A partial split payment skips the sum check; the breakdown is trusted as
// entered.
func TestApplyPaymentPartialSplitSkipsValidation(t *testing.T) {
	bill := &models.Bill{Total: 944}

	err := applyPayment(bill, FinalizeInput{
		PaymentMode: models.PaySplit,
		AmountPaid:  300,
		IsPartial:   true,
		Split:       &SplitBreakdown{Cash: 200, Wallet: 100},
	}, models.LoyaltySetting{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bill.Status != models.BillPartial {
		t.Fatalf("expected partial status, got %s", bill.Status)
	}
}
