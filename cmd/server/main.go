package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamRogowski/LanguageLearningApp/internal/config"
	"github.com/AdamRogowski/LanguageLearningApp/internal/database"
	"github.com/AdamRogowski/LanguageLearningApp/internal/handlers"
	"github.com/AdamRogowski/LanguageLearningApp/internal/repository"
	"github.com/AdamRogowski/LanguageLearningApp/internal/security"
	"github.com/AdamRogowski/LanguageLearningApp/internal/service"
	"github.com/AdamRogowski/LanguageLearningApp/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(database.Options{
		Type: cfg.DatabaseType,
		Path: cfg.DatabasePath,
		URL:  cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Session store: Redis when configured, in-memory otherwise
	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions = session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		log.Printf("Session store: redis (%s)", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore()
		log.Println("Session store: in-memory")
	}

	// Email notifications (runs disabled without SES_FROM_EMAIL)
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	masteryRepo := repository.NewMasteryRepository(db)

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration)
	authService := service.NewAuthService(userRepo, tokens, emailService)
	directoryService := service.NewDirectoryService(db, directoryRepo, enrollmentRepo)
	lessonService := service.NewLessonService(db, lessonRepo, enrollmentRepo, directoryRepo)
	practiceService := service.NewPracticeService(enrollmentRepo, masteryRepo, lessonRepo, userRepo, sessions, emailService)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	lessonHandler := handlers.NewLessonHandler(lessonService, practiceService)
	practiceHandler := handlers.NewPracticeHandler(practiceService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/register", authHandler.Register)
	mux.HandleFunc("POST /api/login", authHandler.Login)

	// Directory routes
	mux.HandleFunc("GET /api/directories", middleware.RequireAuth(directoryHandler.Root))
	mux.HandleFunc("GET /api/directories/{id}", middleware.RequireAuth(directoryHandler.Get))
	mux.HandleFunc("POST /api/directories", middleware.RequireAuth(directoryHandler.Create))
	mux.HandleFunc("POST /api/directories/{id}/rename", middleware.RequireAuth(directoryHandler.Rename))
	mux.HandleFunc("POST /api/directories/{id}/move", middleware.RequireAuth(directoryHandler.Move))
	mux.HandleFunc("POST /api/directories/{id}/delete", middleware.RequireAuth(directoryHandler.Delete))

	// Lesson routes
	mux.HandleFunc("POST /api/lessons", middleware.RequireAuth(lessonHandler.Create))
	mux.HandleFunc("GET /api/lessons/{id}", middleware.RequireAuth(lessonHandler.Get))
	mux.HandleFunc("POST /api/lessons/{id}/settings", middleware.RequireAuth(lessonHandler.UpdateSettings))
	mux.HandleFunc("POST /api/lessons/{id}/reset", middleware.RequireAuth(lessonHandler.ResetProgress))
	mux.HandleFunc("POST /api/lessons/{id}/delete", middleware.RequireAuth(lessonHandler.Delete))
	mux.HandleFunc("POST /api/lessons/{id}/move", middleware.RequireAuth(directoryHandler.MoveLesson))

	// Practice routes
	mux.HandleFunc("POST /api/practice/{id}/start", middleware.RequireAuth(practiceHandler.Start))
	mux.HandleFunc("GET /api/practice/{id}/question", middleware.RequireAuth(practiceHandler.Question))
	mux.HandleFunc("POST /api/practice/{id}/submit", middleware.RequireAuth(practiceHandler.Submit))
	mux.HandleFunc("POST /api/practice/{id}/acknowledge", middleware.RequireAuth(practiceHandler.Acknowledge))
	mux.HandleFunc("POST /api/practice/{id}/cancel", middleware.RequireAuth(practiceHandler.Cancel))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
