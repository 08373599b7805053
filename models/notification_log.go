// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	SalonID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`

	Kind         string `gorm:"type:varchar(30)"` // bill, appointment_confirmation, staff_report, reminder
	Channel      string `gorm:"type:varchar(20)"` // whatsapp, sms, link
	Message      string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(20)"` // sent, failed, composed
	ErrorMessage string `gorm:"type:text"`
	SentAt       time.Time

	gorm.Model
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	return
}
