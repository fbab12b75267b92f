package main

import (
	"alcyxob/gym-manager/internal/api"
	"alcyxob/gym-manager/internal/app"
	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/service"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title Gym Manager API
// @version 1.0
// @description API for gym members, coaches and administrators: subscriptions, monthly routines, workout logs, exercise media and branding.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Gym Manager Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	// --- Database Connection ---
	repos, closeDB, err := app.OpenRepositories(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("FATAL: Could not open the database: %v", err)
	}
	defer closeDB()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := app.OpenStorage(ctx, cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Metrics ---
	var m *metrics.Metrics
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(cfg.Metrics.Namespace, registry)
	}

	// --- Initialize Services ---
	log.Println("Initializing services...")
	clock := service.SystemClock
	auditService := service.NewAuditService(repos.AuditLogs, clock, cfg.Audit.WriteTimeout, m)
	evaluator := service.NewSubscriptionEvaluator(cfg.Accounts.WarningDays)
	accountService := service.NewAccountService(repos.Users, auditService, evaluator, clock, cfg.Accounts.DefaultSubscriptionDays, m)
	authService := service.NewAuthService(repos.Users, accountService, evaluator, clock, service.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		JWTExpiration: cfg.JWT.Expiration,
		SocialSecret:  cfg.Social.AssertionSecret,
		SocialIssuer:  cfg.Social.Issuer,
	}, m)
	routineService := service.NewRoutineService(repos.Routines,
		service.NewRoutinePublisher(repos.Routines, repos.Users, auditService, clock, m), auditService)
	independentRoutineService := service.NewRoutineService(repos.IndependentRoutines,
		service.NewRoutinePublisher(repos.IndependentRoutines, repos.Users, auditService, clock, m), auditService)
	workoutService := service.NewWorkoutService(repos.WorkoutLogs, repos.AllRoutines(), auditService, clock)
	exerciseService := service.NewExerciseService(repos.Exercises, fileStorage, auditService, clock, cfg.S3.PresignExpiry)
	brandingService := service.NewBrandingService(repos.Branding, fileStorage, auditService, clock, cfg.S3.PresignExpiry)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware
	if m != nil {
		router.Use(m.GinMiddleware())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, api.Services{
		Auth:                authService,
		Accounts:            accountService,
		Routines:            routineService,
		IndependentRoutines: independentRoutineService,
		Workouts:            workoutService,
		Exercises:           exerciseService,
		Branding:            brandingService,
		Audit:               auditService,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	// pending audit entries are written before the database goes away
	auditService.Flush()

	log.Println("Server exiting.")
}
