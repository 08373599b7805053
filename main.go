package main

import (
	"fmt"
	"log"
	"os"

	"salondesk-backend/config"
	"salondesk-backend/controllers"
	"salondesk-backend/models"
	"salondesk-backend/routes"
	"salondesk-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Salon{},
		&models.User{},
		&models.Customer{},
		&models.Service{},
		&models.Product{},
		&models.Staff{},
		&models.Appointment{},
		&models.Bill{},
		&models.BillItem{},
		&models.PaymentTransaction{},
		&models.Expense{},
		&models.LoyaltySetting{},
		&models.NotificationSetting{},
		&models.NotificationLog{},
	)
}

func main() {
	controllers.InitServices(config.DB)

	notifier := services.NewNotificationService(config.DB)
	reminders := services.NewReminderService(config.DB, notifier)
	reminders.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
