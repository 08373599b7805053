package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Salon struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"not null"`
	Address string
	GSTIN   string `gorm:"type:varchar(20)"`
	Phone   string
	Logo    string

	// Percent applied on the subtotal of every bill
	TaxRate      float64 `gorm:"type:decimal(5,2);default:0.0"`
	WorkingHours JSONB   `gorm:"type:jsonb;default:'{}'"`

	Users        []User        `gorm:"foreignKey:SalonID"`
	Customers    []Customer    `gorm:"foreignKey:SalonID"`
	Services     []Service     `gorm:"foreignKey:SalonID"`
	Products     []Product     `gorm:"foreignKey:SalonID"`
	Staff        []Staff       `gorm:"foreignKey:SalonID"`
	Appointments []Appointment `gorm:"foreignKey:SalonID"`
	Bills        []Bill        `gorm:"foreignKey:SalonID"`
	Expenses     []Expense     `gorm:"foreignKey:SalonID"`
}

// LoyaltySetting controls point earning and redemption for one salon.
type LoyaltySetting struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	Enabled          bool    `gorm:"default:false"`
	SpendForOnePoint float64 `gorm:"type:decimal(10,2);default:100.0"`
	PointValue       float64 `gorm:"type:decimal(10,2);default:1.0"`

	gorm.Model
}

func (l *LoyaltySetting) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

// NotificationSetting holds the master switch, per-kind triggers and the
// configured provider ('manual' composes a WhatsApp deep link, 'twilio' sends).
type NotificationSetting struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	Enabled                 bool   `gorm:"default:false"`
	BillTrigger             bool   `gorm:"default:true"`
	AppointmentConfirmation bool   `gorm:"default:true"`
	StaffReport             bool   `gorm:"default:false"`
	Provider                string `gorm:"type:varchar(20);default:'manual'"` // manual, twilio

	gorm.Model
}

func (n *NotificationSetting) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
