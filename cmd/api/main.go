package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/dayadict/dayadict-server/internal/adapters/cache"
	adapterHTTP "github.com/dayadict/dayadict-server/internal/adapters/handler/http"
	"github.com/dayadict/dayadict-server/internal/adapters/repository"
	"github.com/dayadict/dayadict-server/internal/core/domain"
	"github.com/dayadict/dayadict-server/internal/core/feed"
	"github.com/dayadict/dayadict-server/internal/core/reminder"
	"github.com/dayadict/dayadict-server/internal/core/services"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")

	serverPort := getEnv("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET must be set")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connected successfully.")

	var habitRepo domain.HabitRepository = repository.NewPostgresHabitRepository(db)
	userRepo := repository.NewPostgresUserRepository(db.DB)
	settingsRepo := repository.NewPostgresSettingsRepository(db)

	redisClient, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost")+":"+getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		habitRepo = repository.NewCachedHabitRepository(habitRepo, redisClient)
		log.Println("Redis connected, habit list cache enabled.")
	}

	hub := feed.NewHub(habitRepo)
	scheduler := reminder.NewScheduler(services.NewPushNotifier(settingsRepo))

	tokenService := services.NewTokenService(jwtSecret, getEnv("JWT_ISSUER", "dayadict"), 24*time.Hour, userRepo)
	authService := services.NewAuthService(userRepo)
	habitService := services.NewHabitService(habitRepo, hub)
	settingsService := services.NewSettingsService(settingsRepo, scheduler)
	statsService := services.NewStatsService(habitRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler:    adapterHTTP.NewHabitHandler(habitService),
		SettingsHandler: adapterHTTP.NewSettingsHandler(settingsService),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService),
		FeedHandler:     adapterHTTP.NewFeedHandler(hub, tokenService),
		TokenService:    tokenService,
		DB:              db,
		Redis:           redisClient,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("DayAdict server running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	hub.Close()
	scheduler.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
