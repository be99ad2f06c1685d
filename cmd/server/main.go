package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cashwise/backend/docs"
	"github.com/cashwise/backend/internal/attachments"
	"github.com/cashwise/backend/internal/audit"
	"github.com/cashwise/backend/internal/authz"
	"github.com/cashwise/backend/internal/config"
	"github.com/cashwise/backend/internal/database"
	"github.com/cashwise/backend/internal/handlers"
	"github.com/cashwise/backend/internal/notify"
	"github.com/cashwise/backend/internal/services"
	"github.com/cashwise/backend/internal/storage"
	"github.com/go-redis/redis/v8"
)

// @title CashWise API
// @version 1.0
// @description Multi-tenant expense and ledger service
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	db := database.InitDatabase(cfg.Database)
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	redisClient := database.InitRedis(cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sender, closeSender := newSender(cfg, redisClient)
	defer closeSender()
	dispatcher := notify.NewDispatcher(sender, cfg.Notification.Timeout)

	files, err := attachments.NewDiskStore(cfg.Attachments.Dir, cfg.Attachments.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize attachment store: %v", err)
	}

	store := storage.New(db)
	policy := authz.DefaultPolicy()
	auditLogger := audit.NewLogger()
	loc := cfg.Business.Location

	authService := services.NewAuthService(store, redisClient, cfg.Auth)
	accountService := services.NewAccountService(store, policy, authService)
	ledgerService := services.NewLedgerService(store, policy, dispatcher, auditLogger)
	expenseService := services.NewExpenseService(store, policy, dispatcher, auditLogger, loc, cfg.Notification.AdminRecipients)
	reviewService := services.NewReviewService(store, policy, dispatcher, auditLogger, loc, cfg.Review.MinMessageLength)
	reportService := services.NewReportService(store, policy, loc, cfg.Report.DefaultLimit)
	limitService := services.NewLimitService(store, policy)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:       handlers.NewAuthHandler(authService),
		Accounts:   handlers.NewAccountHandler(accountService, ledgerService, reportService, files),
		Expenses:   handlers.NewExpenseHandler(expenseService, reviewService, files),
		Limits:     handlers.NewLimitHandler(limitService),
		Verifier:   authService,
		UploadsDir: cfg.Attachments.Dir,
		Ping: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(ctx)
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s (business timezone %s)", cfg.Server.Port, cfg.Business.Timezone)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	dispatcher.Wait()

	log.Println("Server stopped")
}

// newSender picks the notification transport named by configuration and
// falls back to logging when it is unavailable.
func newSender(cfg *config.Config, redisClient *redis.Client) (notify.Sender, func()) {
	noop := func() {}

	switch cfg.Notification.Driver {
	case "redis":
		if redisClient == nil {
			log.Printf("[NOTIFY] Redis unavailable, notifications will be logged only")
			return notify.LogSender{}, noop
		}
		return notify.NewRedisSender(redisClient, cfg.Notification.Queue), noop
	case "amqp":
		sender, err := notify.NewAMQPSender(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Printf("[NOTIFY] AMQP unavailable, notifications will be logged only: %v", err)
			return notify.LogSender{}, noop
		}
		return sender, func() {
			if err := sender.Close(); err != nil {
				log.Printf("[NOTIFY] Failed to close AMQP sender: %v", err)
			}
		}
	}
	return notify.LogSender{}, noop
}
