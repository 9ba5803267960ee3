package routes

import (
	"os"
	"strings"

	"gempro-backend/config"
	"gempro-backend/controllers"
	"gempro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func allowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:3000"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
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
	api.Use(utils.AuthMiddleware(), controllers.SubscriptionGuard())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)

			customers.GET("/:id/transactions", controllers.GetCustomerTransactions)
			customers.POST("/:id/transactions", controllers.CreateCustomerTransaction)
		}

		// Inventory routes
		items := api.Group("/items")
		{
			items.POST("", controllers.CreateItem)
			items.GET("", controllers.GetItems)
			items.GET("/:id", controllers.GetItem)
			items.PUT("/:id", controllers.UpdateItem)
			items.DELETE("/:id", controllers.DeleteItem)

			items.POST("/:id/adjust-stock", controllers.AdjustStock)
			items.GET("/:id/movements", controllers.GetItemMovements)
			items.POST("/:id/photo", controllers.UploadItemPhoto)
		}

		// Sale routes
		sales := api.Group("/sales")
		{
			sales.POST("", controllers.CreateSale)
			sales.GET("", controllers.GetSales)
			sales.GET("/:id", controllers.GetSale)
			sales.POST("/:id/void", controllers.VoidSale)
		}

		// Supplier routes
		suppliers := api.Group("/suppliers")
		{
			suppliers.POST("", controllers.CreateSupplier)
			suppliers.GET("", controllers.GetSuppliers)
			suppliers.GET("/:id", controllers.GetSupplier)
			suppliers.PUT("/:id", controllers.UpdateSupplier)
			suppliers.DELETE("/:id", controllers.DeleteSupplier)
		}

		// Purchase routes
		purchases := api.Group("/purchases")
		{
			purchases.POST("", controllers.CreatePurchase)
			purchases.GET("", controllers.GetPurchases)
			purchases.GET("/:id", controllers.GetPurchase)
			purchases.POST("/:id/receive", controllers.ReceivePurchase)
			purchases.POST("/:id/cancel", controllers.CancelPurchase)
		}

		// Courier routes
		couriers := api.Group("/couriers")
		{
			couriers.POST("", controllers.CreateCourier)
			couriers.GET("", controllers.GetCouriers)
			couriers.GET("/:id", controllers.GetCourier)
			couriers.PUT("/:id", controllers.UpdateCourier)
			couriers.DELETE("/:id", controllers.DeleteCourier)

			couriers.GET("/:id/transactions", controllers.GetCourierTransactions)
			couriers.POST("/:id/settle", controllers.SettleCourier)
		}

		// Delivery routes
		deliveries := api.Group("/deliveries")
		{
			deliveries.POST("", controllers.CreateDelivery)
			deliveries.GET("", controllers.GetDeliveries)
			deliveries.GET("/:id", controllers.GetDelivery)
			deliveries.PUT("/:id/status", controllers.UpdateDeliveryStatus)
		}

		// Expense routes
		expenses := api.Group("/expenses")
		{
			expenses.POST("", controllers.CreateExpense)
			expenses.GET("", controllers.GetExpenses)
			expenses.PUT("/:id", controllers.UpdateExpense)
			expenses.DELETE("/:id", controllers.DeleteExpense)
		}

		recurring := api.Group("/recurring-expenses")
		{
			recurring.POST("", controllers.CreateRecurringExpense)
			recurring.GET("", controllers.GetRecurringExpenses)
			recurring.PUT("/:id", controllers.UpdateRecurringExpense)
			recurring.DELETE("/:id", controllers.DeleteRecurringExpense)
		}

		// Reports routes
		reportController := controllers.ReportController{}
		api.GET("/reports", reportController.GetReportAnalytics)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)

		// Realtime change feed
		api.GET("/events/stream", controllers.StreamEvents)
		api.GET("/events", controllers.GetChangeLog)

		// Billing routes
		api.GET("/plans", controllers.GetPlans)
		billing := api.Group("/subscription")
		{
			billing.GET("", controllers.GetSubscription)

			billing.Use(utils.RequireOwner())
			billing.POST("/checkout", controllers.StartCheckout)
			billing.POST("/confirm", controllers.ConfirmCheckout)
		}

		// Settings routes, owner only
		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetShopProfile)

			profile.Use(utils.RequireOwner())
			profile.PUT("", controllers.UpdateShopProfile)
			profile.PUT("/notifications", controllers.UpdateNotificationSettings)
		}

		staff := api.Group("/staff", utils.RequireOwner())
		{
			staff.GET("", controllers.GetStaff)
			staff.POST("", controllers.CreateStaff)
			staff.DELETE("/:id", controllers.DeactivateStaff)
		}
	}

	return r
}
