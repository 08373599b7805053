package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_salon_sku,priority:1"`

	Name string `gorm:"not null"`
	SKU  string `gorm:"type:varchar(50);uniqueIndex:idx_salon_sku,priority:2"`

	// Stock is never decremented by billing; retail sales are recorded on the
	// bill only and inventory is adjusted manually.
	Stock             int     `gorm:"default:0"`
	Price             float64 `gorm:"type:decimal(10,2);not null"`
	CostPrice         float64 `gorm:"type:decimal(10,2);default:0.0"`
	LowStockThreshold int     `gorm:"default:5"`
	IsActive          bool    `gorm:"default:true"`

	gorm.Model
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
