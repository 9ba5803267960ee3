package main

import (
	"fmt"
	"log"
	"os"

	"gempro-backend/config"
	"gempro-backend/models"
	"gempro-backend/routes"
	"gempro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Shop{},
		&models.User{},
		&models.Customer{},
		&models.CustomerTransaction{},
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Supplier{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.CourierCompany{},
		&models.CourierTransaction{},
		&models.Delivery{},
		&models.Expense{},
		&models.RecurringExpense{},
		&models.Plan{},
		&models.Subscription{},
		&models.ChangeEvent{},
		&models.NotificationLog{},
	)

	seedPlans()
}

func seedPlans() {
	plans := []models.Plan{
		{Code: "starter", Name: "Starter", MonthlyPrice: decimal.NewFromInt(0), MaxUsers: 2, MaxItems: 200},
		{Code: "pro", Name: "Pro", MonthlyPrice: decimal.NewFromInt(29), MaxUsers: 5, MaxItems: 2000},
		{Code: "business", Name: "Business", MonthlyPrice: decimal.NewFromInt(79), MaxUsers: 20, MaxItems: 20000},
	}
	for _, plan := range plans {
		var existing models.Plan
		if err := config.DB.Where("code = ?", plan.Code).First(&existing).Error; err != nil {
			plan.IsActive = true
			if err := config.DB.Create(&plan).Error; err != nil {
				log.Printf("Failed to seed plan %s: %v", plan.Code, err)
			}
		}
	}
}

func main() {
	services.InitEventHub(config.DB)
	services.InitNotifier(config.DB)
	if _, err := services.InitStorage(); err != nil {
		log.Printf("Object storage disabled: %v", err)
	}

	services.NewRecurringExpenseService(config.DB).StartScheduler()
	services.NewBillingService(config.DB).StartScheduler()

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
