package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillStatus string

const (
	BillPaid     BillStatus = "paid"
	BillPartial  BillStatus = "partial"
	BillRefunded BillStatus = "refunded"
)

type PaymentMode string

const (
	PayCash   PaymentMode = "cash"
	PayCard   PaymentMode = "card"
	PayUPI    PaymentMode = "upi"
	PayWallet PaymentMode = "wallet"
	PaySplit  PaymentMode = "split"
)

// BillingContext records whether a bill closed out the visit or took a
// deposit before the service was finished.
type BillingContext string

const (
	ContextCheckout BillingContext = "checkout"
	ContextAdvance  BillingContext = "advance"
)

type DiscountMode string

const (
	DiscountAmount  DiscountMode = "amount"
	DiscountPercent DiscountMode = "percent"
)

type ItemKind string

const (
	ItemService ItemKind = "service"
	ItemProduct ItemKind = "product"
	ItemManual  ItemKind = "manual"
)

type Bill struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	BillNumber string `gorm:"uniqueIndex;not null"`

	// Nil for walk-ins billed without a booking
	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName  string     `gorm:"not null"`

	Items []BillItem `gorm:"foreignKey:BillID"`

	Subtotal        float64 `gorm:"type:decimal(10,2);not null"`
	Tax             float64 `gorm:"type:decimal(10,2);default:0.0"`
	Discount        float64 `gorm:"type:decimal(10,2);default:0.0"`
	LoyaltyDiscount float64 `gorm:"type:decimal(10,2);default:0.0"`
	Total           float64 `gorm:"type:decimal(10,2);not null"`

	BillDate    time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	Context     BillingContext `gorm:"type:varchar(10);default:'checkout'"`
	PaymentMode PaymentMode    `gorm:"type:varchar(10)"`

	// Breakdown for split payments; zero otherwise
	SplitCash   float64 `gorm:"type:decimal(10,2);default:0.0"`
	SplitCard   float64 `gorm:"type:decimal(10,2);default:0.0"`
	SplitUPI    float64 `gorm:"type:decimal(10,2);default:0.0"`
	SplitWallet float64 `gorm:"type:decimal(10,2);default:0.0"`

	IsPartialPayment bool    `gorm:"default:false"`
	AmountPaid       float64 `gorm:"type:decimal(10,2);default:0.0"`
	DueAmount        float64 `gorm:"type:decimal(10,2);default:0.0"`

	Payments []PaymentTransaction `gorm:"foreignKey:BillID"`

	Status         BillStatus `gorm:"type:varchar(10);default:'paid'"`
	PointsEarned   int        `gorm:"default:0"`
	PointsRedeemed int        `gorm:"default:0"`
	Notes          string
}

func (b *Bill) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

type BillItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	BillID uuid.UUID `gorm:"type:uuid;index;not null"`

	Kind ItemKind `gorm:"type:varchar(10);not null"`
	// Catalog reference; nil for manual items typed in at the till
	ServiceID *uuid.UUID `gorm:"type:uuid;index"`
	ProductID *uuid.UUID `gorm:"type:uuid;index"`

	Name       string  `gorm:"not null"`
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null"`
	Quantity   int     `gorm:"default:1"`
	TotalPrice float64 `gorm:"type:decimal(10,2);not null"`
}

func (i *BillItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// PaymentTransaction is append-only; rows are never edited or removed once a
// payment has been recorded against a bill.
type PaymentTransaction struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	BillID uuid.UUID `gorm:"type:uuid;index;not null"`

	Amount float64     `gorm:"type:decimal(10,2);not null"`
	Mode   PaymentMode `gorm:"type:varchar(10);not null"`
	Note   string      // "Full Payment", "Advance Payment", "Balance Settlement"
	PaidAt time.Time   `gorm:"default:CURRENT_TIMESTAMP"`
}

func (p *PaymentTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
