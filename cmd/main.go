package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"speakup/backend/internal/api/handler"
	"speakup/backend/internal/intake"
	"speakup/backend/internal/lifecycle"
	"speakup/backend/internal/models"
	"speakup/backend/internal/notify"
	"speakup/backend/internal/routing"
	"speakup/backend/internal/screening"
	"speakup/backend/internal/storage"
	"speakup/backend/internal/tasks"
	"speakup/backend/internal/trust"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "user"),
		getEnv("DB_PASSWORD", "password"),
		getEnv("DB_NAME", "speakupdb"),
		getEnv("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: "",
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.AnonymousMap{},
		&models.Feedback{},
		&models.TrustHistory{},
		&models.Department{},
		&models.RevealAudit{},
		&models.SpamReport{},
		&models.ThreadMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func seedDepartments(s *storage.Service) {
	departments := []models.Department{
		{Category: "academics", Name: "Academic Affairs"},
		{Category: "facilities", Name: "Facilities & Maintenance"},
		{Category: "finance", Name: "Finance & Billing"},
		{Category: "harassment", Name: "Harassment & Safety"},
		{Category: "it", Name: "IT Services"},
	}
	if err := s.SeedDepartments(departments); err != nil {
		log.Fatalf("Failed to seed departments: %v", err)
	}
}

func main() {
	log.Println("Starting SpeakUp Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)
	seedDepartments(s)

	// Optional Telegram notifier for the handling team.
	var notifier tasks.Notifier
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_ALERT_CHAT"), 10, 64)
		if err != nil {
			log.Fatalf("TELEGRAM_ALERT_CHAT must be a chat id: %v", err)
		}
		bot, err := notify.NewBot(token, chatID)
		if err != nil {
			log.Fatalf("Failed to start Telegram notifier: %v", err)
		}
		notifier = bot
	}

	// Pipeline assembly, leaves first.
	gate := screening.NewGate(s)
	trustEngine := trust.NewEngine(s)
	router := routing.NewEngine(s)
	lifecycleMgr := lifecycle.NewManager(s, trustEngine)
	intakeSvc := intake.NewService(s, gate, trustEngine, lifecycleMgr, s)

	worker := tasks.NewWorker(s, s, router, notifier)
	go worker.Run()

	jwtSecret := []byte(getEnv("JWT_SECRET", "dev-only-secret"))
	h := handler.NewHandler(intakeSvc, s, jwtSecret)

	r := gin.Default()

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	api := r.Group("/api", h.AuthRequired())
	{
		api.POST("/complaints", h.SubmitComplaint)
		api.GET("/complaints/own", h.ListOwnComplaints)
		api.GET("/complaints", h.ListComplaints)
		api.PATCH("/complaints/:id/status", h.UpdateStatus)
		api.POST("/complaints/:id/feedback", h.SubmitFeedback)
		api.GET("/complaints/:id/reveal", h.RevealIdentity)
		api.POST("/complaints/:id/validate", h.ValidateComplaint)
		api.POST("/complaints/:id/dismiss", h.DismissComplaint)
		api.GET("/complaints/:id/messages", h.GetThreadMessages)
		api.POST("/complaints/:id/messages", h.PostThreadMessage)
		api.GET("/complaints/:id/ws", h.ServeThreadSocket)
		api.GET("/trust/history", h.GetTrustHistory)
		api.GET("/departments", h.ListDepartments)
	}

	server := &http.Server{
		Addr:           ":" + getEnv("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
