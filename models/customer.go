package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_salon_phone,priority:1"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"not null"`
	Phone       string `gorm:"not null;uniqueIndex:idx_salon_phone,priority:2"`
	Email       string
	Birthday    *time.Time
	Anniversary *time.Time
	Notes       string

	WalletBalance float64 `gorm:"type:decimal(10,2);default:0.0"`
	LoyaltyPoints int     `gorm:"default:0"`
	TotalVisits   int     `gorm:"default:0"`
	TotalSpent    float64 `gorm:"type:decimal(10,2);default:0.0"`
	LastVisit     *time.Time
	IsActive      bool `gorm:"default:true"`

	Bills []Bill `gorm:"foreignKey:CustomerID"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
