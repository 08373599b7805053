// services/reminder.go
package services

import (
	"fmt"
	"log"
	"time"

	"salondesk-backend/models"
	"salondesk-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService pushes next-day appointment reminders and birthday
// greetings through the notification sender on a daily schedule.
type ReminderService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewReminderService(db *gorm.DB, notifier *NotificationService) *ReminderService {
	return &ReminderService{db: db, notifier: notifier}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", func() {
		s.SendDailyReminders()
	})

	c.Start()
	log.Println("Reminder scheduler started")
}

func (s *ReminderService) SendDailyReminders() {
	log.Println("Starting daily reminder processing...")

	var salons []models.Salon
	if err := s.db.Find(&salons).Error; err != nil {
		log.Printf("Failed to fetch salons: %v", err)
		return
	}

	for _, salon := range salons {
		s.processSalonReminders(salon)
	}

	log.Println("Daily reminder processing completed")
}

func (s *ReminderService) processSalonReminders(salon models.Salon) {
	s.sendAppointmentReminders(salon)
	s.sendBirthdayGreetings(salon)
}

func (s *ReminderService) sendAppointmentReminders(salon models.Salon) {
	dayStart := utils.BeginningOfDay(time.Now().AddDate(0, 0, 1))
	dayEnd := dayStart.AddDate(0, 0, 1)

	var appointments []models.Appointment
	if err := s.db.Where("salon_id = ? AND status = ? AND date >= ? AND date < ?",
		salon.ID, models.AppointmentScheduled, dayStart, dayEnd).
		Find(&appointments).Error; err != nil {
		log.Printf("Salon %s: failed to fetch tomorrow's appointments: %v", salon.ID, err)
		return
	}

	for _, appointment := range appointments {
		var customer models.Customer
		if err := s.db.First(&customer, "id = ?", appointment.CustomerID).Error; err != nil {
			continue
		}
		message := fmt.Sprintf("Hi %s, a reminder of your appointment at %s tomorrow at %s.",
			customer.Name, salon.Name, appointment.Time)
		customerID := customer.ID
		s.notifier.Deliver(salon.ID, NotifyReminder, &customerID, customer.Phone, message)
	}
}

func (s *ReminderService) sendBirthdayGreetings(salon models.Salon) {
	now := time.Now()

	var customers []models.Customer
	if err := s.db.Where("salon_id = ? AND is_active = ? AND birthday IS NOT NULL", salon.ID, true).
		Find(&customers).Error; err != nil {
		log.Printf("Salon %s: failed to fetch customers for birthdays: %v", salon.ID, err)
		return
	}

	for _, customer := range customers {
		if customer.Birthday == nil {
			continue
		}
		if customer.Birthday.Month() != now.Month() || customer.Birthday.Day() != now.Day() {
			continue
		}
		message := fmt.Sprintf("Hi %s, %s wishes you a very happy birthday! Enjoy a special treat on your next visit.",
			customer.Name, salon.Name)
		id := customer.ID
		s.sendGreeting(salon.ID, id, customer.Phone, message)
	}
}

func (s *ReminderService) sendGreeting(salonID, customerID uuid.UUID, phone, message string) {
	s.notifier.Deliver(salonID, NotifyReminder, &customerID, phone, message)
}
