// controllers/billing.go
package controllers

import (
	"errors"
	"net/http"

	"salondesk-backend/config"
	"salondesk-backend/models"
	"salondesk-backend/services"
	"salondesk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	notifier *services.NotificationService
	billing  *services.BillingService
)

// InitServices wires the billing and notification services; called once from
// main after the database is up.
func InitServices(db *gorm.DB) {
	notifier = services.NewNotificationService(db)
	billing = services.NewBillingService(db, notifier)
}

// BillItemInput is one line entered at the till. Catalog lines reference a
// service or product id; manual lines carry an operator-chosen name and price.
type BillItemInput struct {
	Kind      models.ItemKind `json:"kind" binding:"required,oneof=service product manual"`
	ServiceID *uuid.UUID      `json:"serviceId"`
	ProductID *uuid.UUID      `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice float64         `json:"unitPrice" binding:"min=0"`
	Quantity  int             `json:"quantity" binding:"min=1"`
}

type DraftBillInput struct {
	AppointmentID *uuid.UUID            `json:"appointmentId"`
	Context       models.BillingContext `json:"context" binding:"omitempty,oneof=checkout advance"`
}

type FinalizeBillInput struct {
	AppointmentID *uuid.UUID            `json:"appointmentId"`
	Context       models.BillingContext `json:"context" binding:"omitempty,oneof=checkout advance"`
	CustomerID    *uuid.UUID            `json:"customerId"`
	CustomerName  string                `json:"customerName"`

	Items []BillItemInput `json:"items"`

	DiscountValue  float64             `json:"discountValue" binding:"min=0"`
	DiscountMode   models.DiscountMode `json:"discountMode" binding:"omitempty,oneof=amount percent"`
	PointsRedeemed int                 `json:"pointsRedeemed" binding:"min=0"`

	PaymentMode models.PaymentMode        `json:"paymentMode" binding:"required,oneof=cash card upi wallet split"`
	AmountPaid  float64                   `json:"amountPaid" binding:"min=0"`
	IsPartial   bool                      `json:"isPartial"`
	Split       *services.SplitBreakdown  `json:"split"`
	Notes       string                    `json:"notes"`
}

type SettleBillInput struct {
	Amount      float64            `json:"amount" binding:"required,gt=0"`
	PaymentMode models.PaymentMode `json:"paymentMode" binding:"required,oneof=cash card upi wallet"`
}

// DraftBill builds a reviewable draft without persisting anything. For an
// appointment that already carries a partial bill in a checkout context, the
// response points the operator at the settlement flow instead.
func DraftBill(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input DraftBillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.AppointmentID == nil {
		c.JSON(http.StatusOK, services.DraftResult{Draft: billing.BuildBlank(salonUUID)})
		return
	}

	billingCtx := input.Context
	if billingCtx == "" {
		billingCtx = models.ContextCheckout
	}

	result, err := billing.BuildFromAppointment(salonUUID, *input.AppointmentID, billingCtx)
	if err != nil {
		respondBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// FinalizeBill commits a bill: rebuilds the draft server-side from the
// submitted items and discounts, then settles it.
func FinalizeBill(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	var input FinalizeBillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var draft *models.Bill
	billingCtx := input.Context
	if billingCtx == "" {
		billingCtx = models.ContextCheckout
	}

	if input.AppointmentID != nil {
		result, err := billing.BuildFromAppointment(salonUUID, *input.AppointmentID, billingCtx)
		if err != nil {
			respondBillingError(c, err)
			return
		}
		if result.ExistingPartial != nil {
			utils.RespondWithError(c, http.StatusConflict,
				"A partial bill already exists for this appointment; settle its balance instead")
			return
		}
		draft = result.Draft
	} else {
		draft = billing.BuildBlank(salonUUID)
		draft.Context = billingCtx
		if input.CustomerName != "" {
			draft.CustomerName = input.CustomerName
		}
		if input.CustomerID != nil {
			var customer models.Customer
			if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, *input.CustomerID).
				First(&customer).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
				} else {
					utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				}
				return
			}
			draft.CustomerID = &customer.ID
			draft.CustomerName = customer.Name
		}
	}

	extraItems, ok := resolveItems(c, salonUUID, input.Items)
	if !ok {
		return
	}
	draft.Items = append(draft.Items, extraItems...)
	draft.Notes = input.Notes

	// Re-derive all amounts on the server; client-side totals are never trusted
	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", salonUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	var loyalty models.LoyaltySetting
	config.DB.Where("salon_id = ?", salonUUID).First(&loyalty)

	discountMode := input.DiscountMode
	if discountMode == "" {
		discountMode = models.DiscountAmount
	}
	totals := services.ComputeTotals(draft.Items, input.DiscountValue, discountMode,
		input.PointsRedeemed, salon.TaxRate, loyalty.PointValue)
	draft.Subtotal = totals.Subtotal
	draft.Tax = totals.Tax
	draft.Discount = totals.Discount
	draft.LoyaltyDiscount = totals.LoyaltyDiscount
	draft.Total = totals.Total

	bill, err := billing.Finalize(salonUUID, draft, services.FinalizeInput{
		PaymentMode:    input.PaymentMode,
		AmountPaid:     input.AmountPaid,
		IsPartial:      input.IsPartial,
		Split:          input.Split,
		PointsRedeemed: input.PointsRedeemed,
	})
	if err != nil {
		respondBillingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bill)
}

// SettleBill applies a further payment to a partial bill
func SettleBill(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	billUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var input SettleBillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	bill, err := billing.Settle(salonUUID, billUUID, input.Amount, input.PaymentMode)
	if err != nil {
		respondBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

// RefundBill terminally marks a bill refunded
func RefundBill(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	billUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	bill, err := billing.Refund(salonUUID, billUUID)
	if err != nil {
		respondBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

// GetBills retrieves all bills for the salon
func GetBills(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Preload("Items").Preload("Payments").
		Where("salon_id = ?", salonUUID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bills []models.Bill
	if err := query.Order("bill_date DESC").Find(&bills).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bills")
		return
	}

	c.JSON(http.StatusOK, bills)
}

// GetBill retrieves a specific bill by ID
func GetBill(c *gin.Context) {
	salonUUID, ok := salonFromContext(c)
	if !ok {
		return
	}
	billUUID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var bill models.Bill
	if err := config.DB.Preload("Items").Preload("Payments").
		Where("salon_id = ? AND id = ?", salonUUID, billUUID).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Bill not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, bill)
}

// resolveItems turns till input lines into bill items, pricing catalog lines
// from the catalog and passing manual lines through as entered.
func resolveItems(c *gin.Context, salonUUID uuid.UUID, inputs []BillItemInput) ([]models.BillItem, bool) {
	var items []models.BillItem
	for _, in := range inputs {
		quantity := in.Quantity
		if quantity < 1 {
			quantity = 1
		}

		switch in.Kind {
		case models.ItemService:
			if in.ServiceID == nil {
				utils.RespondWithError(c, http.StatusBadRequest, "serviceId required for service items")
				return nil, false
			}
			var service models.Service
			if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, *in.ServiceID).
				First(&service).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					utils.RespondWithError(c, http.StatusBadRequest, "Service not found: "+in.ServiceID.String())
				} else {
					utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				}
				return nil, false
			}
			refID := service.ID
			items = append(items, models.BillItem{
				Kind:       models.ItemService,
				ServiceID:  &refID,
				Name:       service.Name,
				UnitPrice:  service.Price,
				Quantity:   quantity,
				TotalPrice: service.Price * float64(quantity),
			})
		case models.ItemProduct:
			if in.ProductID == nil {
				utils.RespondWithError(c, http.StatusBadRequest, "productId required for product items")
				return nil, false
			}
			var product models.Product
			if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, *in.ProductID).
				First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					utils.RespondWithError(c, http.StatusBadRequest, "Product not found: "+in.ProductID.String())
				} else {
					utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				}
				return nil, false
			}
			refID := product.ID
			items = append(items, models.BillItem{
				Kind:       models.ItemProduct,
				ProductID:  &refID,
				Name:       product.Name,
				UnitPrice:  product.Price,
				Quantity:   quantity,
				TotalPrice: product.Price * float64(quantity),
			})
		case models.ItemManual:
			if in.Name == "" {
				utils.RespondWithError(c, http.StatusBadRequest, "name required for manual items")
				return nil, false
			}
			items = append(items, models.BillItem{
				Kind:       models.ItemManual,
				Name:       in.Name,
				UnitPrice:  in.UnitPrice,
				Quantity:   quantity,
				TotalPrice: in.UnitPrice * float64(quantity),
			})
		}
	}
	return items, true
}

func respondBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAppointmentNotFound), errors.Is(err, services.ErrBillNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrAdvanceExists):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrBillRefunded),
		errors.Is(err, services.ErrNoBalanceDue),
		errors.Is(err, services.ErrSettleAmount),
		errors.Is(err, services.ErrSplitRequired):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		var mismatch *services.SplitMismatchError
		if errors.As(err, &mismatch) {
			utils.RespondWithError(c, http.StatusBadRequest, mismatch.Error())
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}
