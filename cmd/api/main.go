// @title        groupsplit API
// @version      1.0
// @description  Shared expenses, balances and settle-up suggestions for groups.
// @host         localhost:8080
// @BasePath     /api/v1
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/groupsplit/docs"
	"github.com/fkhayef/groupsplit/internal/config"
	"github.com/fkhayef/groupsplit/internal/database"
	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/internal/group"
	"github.com/fkhayef/groupsplit/internal/notification"
	"github.com/fkhayef/groupsplit/internal/recurring"
	"github.com/fkhayef/groupsplit/internal/settlement"
	mw "github.com/fkhayef/groupsplit/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancel()
		log.Fatalf("Failed to migrate database: %v", err)
	}
	cancel()

	// Expense repository is the expense source for balances
	expenseRepo := expense.NewRepository(db)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, expenseRepo)
	groupHandler := group.NewHandler(groupService)

	// Expense feature
	expenseService := expense.NewService(expenseRepo, groupService)
	expenseHandler := expense.NewHandler(expenseService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, groupService, cfg.Currency)
	notificationHandler := notification.NewHandler(notificationService)
	expenseService.SetNotifier(notificationService)

	// Balances and settlements
	settlementService := settlement.NewService(groupService, expenseRepo, expenseService, cfg.Currency)
	settlementHandler := settlement.NewHandler(settlementService)

	// Recurring expenses
	recurringRepo := recurring.NewRepository(db)
	recurringService := recurring.NewService(recurringRepo, groupService, expenseService)
	recurringHandler := recurring.NewHandler(recurringService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	identity := mw.TestUserMiddleware
	if cfg.JWTSecret != "" {
		identity = mw.Auth([]byte(cfg.JWTSecret))
	} else {
		log.Println("JWT_SECRET not set, trusting the " + mw.TestUserHeader + " header")
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(identity)

		// Mount feature routers
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/groups/{groupId}/expenses", expenseHandler.Routes())
		r.Mount("/groups/{groupId}/balances", settlementHandler.BalanceRoutes())
		r.Mount("/groups/{groupId}/settlements", settlementHandler.SettlementRoutes())
		r.Mount("/groups/{groupId}/recurring", recurringHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", mw.TestUserHeader},
		AllowCredentials: false,
	}).Handler(r)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
