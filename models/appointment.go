package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

// UUIDList is stored as a JSONB array so an appointment keeps its booked
// services in order.
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *UUIDList) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &l)
}

type Appointment struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerName string    `gorm:"not null"` // denormalized for listings
	ServiceIDs   UUIDList  `gorm:"type:jsonb;not null"`
	StaffID      uuid.UUID `gorm:"type:uuid;index;not null"`

	Date   time.Time `gorm:"index;not null"`
	Time   string    `gorm:"type:varchar(5);not null"` // "HH:MM"
	Status AppointmentStatus `gorm:"type:varchar(20);default:'scheduled'"`
	Notes  string            `gorm:"type:text"`

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
