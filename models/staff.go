package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Staff struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name  string `gorm:"not null"`
	Phone string
	Role  string `gorm:"default:'Stylist'"`

	// Percent of attributed service revenue paid out as commission
	CommissionRate float64 `gorm:"type:decimal(5,2);default:0.0"`
	IsActive       bool    `gorm:"default:true"`

	Appointments []Appointment `gorm:"foreignKey:StaffID"`

	gorm.Model
}

func (s *Staff) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
