// services/notification.go
package services

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"salondesk-backend/models"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotifyBill                    NotificationKind = "bill"
	NotifyAppointmentConfirmation NotificationKind = "appointment_confirmation"
	NotifyStaffReport             NotificationKind = "staff_report"
	NotifyReminder                NotificationKind = "reminder"
)

// NotificationService delivers customer messages after billing and booking
// events. Delivery is always fire-and-forget: failures are logged, never
// returned to the calling flow.
type NotificationService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &NotificationService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

// NotifyBill fires a bill summary to the bill's customer in the background.
func (s *NotificationService) NotifyBill(salonID uuid.UUID, bill *models.Bill) {
	var salon models.Salon
	if err := s.db.First(&salon, "id = ?", salonID).Error; err != nil {
		log.Printf("Salon %s: failed to load salon for bill notification: %v", salonID, err)
		return
	}

	phone := ""
	if bill.CustomerID != nil {
		var customer models.Customer
		if err := s.db.First(&customer, "id = ?", *bill.CustomerID).Error; err == nil {
			phone = customer.Phone
		}
	}
	if phone == "" {
		return
	}

	message := BillMessage(bill, salon.Name)
	go s.Deliver(salonID, NotifyBill, bill.CustomerID, phone, message)
}

// NotifyAppointment fires a booking confirmation in the background.
func (s *NotificationService) NotifyAppointment(salonID uuid.UUID, appointment *models.Appointment, phone string) {
	var salon models.Salon
	if err := s.db.First(&salon, "id = ?", salonID).Error; err != nil {
		log.Printf("Salon %s: failed to load salon for appointment notification: %v", salonID, err)
		return
	}

	message := fmt.Sprintf("Hi %s, your appointment at %s is confirmed for %s at %s. See you soon!",
		appointment.CustomerName, salon.Name, appointment.Date.Format("02 Jan 2006"), appointment.Time)
	customerID := appointment.CustomerID
	go s.Deliver(salonID, NotifyAppointmentConfirmation, &customerID, phone, message)
}

// Deliver sends one message, honoring the salon's master switch, per-kind
// trigger and configured provider, and records the outcome. Exposed so tests
// and the reminder scheduler can call it synchronously.
func (s *NotificationService) Deliver(salonID uuid.UUID, kind NotificationKind, customerID *uuid.UUID, phone, message string) {
	var settings models.NotificationSetting
	if err := s.db.Where("salon_id = ?", salonID).First(&settings).Error; err != nil {
		return
	}
	if !settings.Enabled || !s.kindEnabled(settings, kind) {
		return
	}

	entry := models.NotificationLog{
		SalonID:    salonID,
		CustomerID: customerID,
		Kind:       string(kind),
		Message:    message,
		SentAt:     time.Now(),
	}

	if settings.Provider == "manual" {
		// Compose a WhatsApp deep link for the operator to open; nothing is
		// sent from here.
		link := "https://wa.me/" + digitsOnly(phone) + "?text=" + url.QueryEscape(message)
		log.Printf("Salon %s: composed %s link: %s", salonID, kind, link)
		entry.Channel = "link"
		entry.Status = "composed"
		s.writeLog(&entry)
		return
	}

	to := phone
	channel := "sms"
	if strings.HasPrefix(phone, "+") {
		to = "whatsapp:" + phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	entry.Channel = channel
	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send %s message to %s: %v", kind, phone, err)
		entry.Status = "failed"
		entry.ErrorMessage = err.Error()
	} else {
		entry.Status = "sent"
		if resp.Sid != nil {
			log.Printf("Message sent to %s, SID: %s", phone, *resp.Sid)
		}
	}
	s.writeLog(&entry)
}

func (s *NotificationService) kindEnabled(settings models.NotificationSetting, kind NotificationKind) bool {
	switch kind {
	case NotifyBill:
		return settings.BillTrigger
	case NotifyAppointmentConfirmation, NotifyReminder:
		return settings.AppointmentConfirmation
	case NotifyStaffReport:
		return settings.StaffReport
	}
	return false
}

func (s *NotificationService) writeLog(entry *models.NotificationLog) {
	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("Failed to record notification log: %v", err)
	}
}

// BillMessage composes the customer-facing summary sent after a settlement.
func BillMessage(bill *models.Bill, salonName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s, thank you for visiting %s!\n", bill.CustomerName, salonName)
	fmt.Fprintf(&b, "Bill %s dated %s\n", bill.BillNumber, bill.BillDate.Format("02 Jan 2006"))
	for _, item := range bill.Items {
		fmt.Fprintf(&b, "- %s x%d: %.2f\n", item.Name, item.Quantity, item.TotalPrice)
	}
	fmt.Fprintf(&b, "Total: %.2f, Paid: %.2f", bill.Total, bill.AmountPaid)
	if bill.DueAmount > 0 {
		fmt.Fprintf(&b, ", Due: %.2f", bill.DueAmount)
	}
	if bill.PointsEarned > 0 {
		fmt.Fprintf(&b, "\nYou earned %d loyalty points!", bill.PointsEarned)
	}
	return b.String()
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
