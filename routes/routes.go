package routes

import (
	"os"
	"strings"

	"salondesk-backend/config"
	"salondesk-backend/controllers"
	"salondesk-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Service catalog routes
		services := api.Group("/services")
		{
			services.POST("", controllers.CreateService)
			services.GET("", controllers.GetServices)
			services.GET("/:id", controllers.GetService)
			services.PUT("/:id", controllers.UpdateService)
			services.DELETE("/:id", controllers.DeleteService)
		}

		// Product catalog routes
		products := api.Group("/products")
		{
			products.POST("", controllers.CreateProduct)
			products.GET("", controllers.GetProducts)
			products.GET("/:id", controllers.GetProduct)
			products.PUT("/:id", controllers.UpdateProduct)
			products.DELETE("/:id", controllers.DeleteProduct)
		}

		// Staff routes
		staff := api.Group("/staff")
		{
			staff.POST("", controllers.CreateStaff)
			staff.GET("", controllers.GetStaff)
			staff.PUT("/:id", controllers.UpdateStaff)
			staff.DELETE("/:id", controllers.DeleteStaff)
		}

		// Appointment routes
		appointments := api.Group("/appointments")
		{
			appointments.POST("", controllers.CreateAppointment)
			appointments.GET("", controllers.GetAppointments)
			appointments.GET("/:id", controllers.GetAppointment)
			appointments.PUT("/:id", controllers.UpdateAppointment)
			appointments.DELETE("/:id", controllers.DeleteAppointment)
		}

		// Billing routes
		billing := api.Group("/billing")
		{
			billing.POST("/draft", controllers.DraftBill)
			billing.POST("", controllers.FinalizeBill)
			billing.GET("", controllers.GetBills)
			billing.GET("/:id", controllers.GetBill)
			billing.POST("/:id/settle", controllers.SettleBill)
			billing.POST("/:id/refund", controllers.RefundBill)
		}

		// Expense routes
		expenses := api.Group("/expenses")
		{
			expenses.POST("", controllers.CreateExpense)
			expenses.GET("", controllers.GetExpenses)
			expenses.PUT("/:id", controllers.UpdateExpense)
			expenses.DELETE("/:id", controllers.DeleteExpense)
		}

		// Reports routes
		reportController := controllers.ReportController{}
		api.GET("/reports", reportController.GetReportAnalytics)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)

		// Settings routes
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("/update-salon", controllers.UpdateSalonProfile)
			profile.PUT("/update-hours", controllers.UpdateWorkingHours)
			profile.PUT("/update-loyalty", controllers.UpdateLoyaltySettings)
			profile.PUT("/update-notifications", controllers.UpdateNotifications)
		}

		employees := api.Group("/employees")
		{
			employees.GET("", controllers.GetEmployees)
			employees.POST("", controllers.AddEmployee)
			employees.PUT("/:id", controllers.UpdateEmployee)
			employees.DELETE("/:id", controllers.DeleteEmployee)
		}
	}

	return r
}
