package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"heartwave/dating-app/internal/api"
	"heartwave/dating-app/internal/config"
	"heartwave/dating-app/internal/logger"
	"heartwave/dating-app/internal/repository/mongo"
	"heartwave/dating-app/internal/service"
	"heartwave/dating-app/internal/storage"
	"heartwave/dating-app/internal/upload"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log := logger.New(cfg.Log)
	log.Info().Msg("starting heartwave server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() {
		log.Info().Msg("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error().Err(err).Msg("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info().Str("database", cfg.Database.Name).Msg("database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureUserIndexes(ctx, appDB.Collection("users")); err != nil {
			log.Error().Err(err).Msg("failed to ensure user indexes")
		}
		if err := mongo.EnsureProfileIndexes(ctx, appDB.Collection("profiles")); err != nil {
			log.Error().Err(err).Msg("failed to ensure profile indexes")
		}
		if err := mongo.EnsureMessageIndexes(ctx, appDB.Collection("messages")); err != nil {
			log.Error().Err(err).Msg("failed to ensure message indexes")
		}
	}()

	// --- Initialize Storage ---
	objectStorage, err := storage.NewS3Storage(cfg.S3, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	messageRepo := mongo.NewMongoMessageRepository(appDB)

	// --- Upload policy from config ---
	policy := upload.Policy{
		MaxBytes:      cfg.Upload.MaxBytes,
		AllowedTypes:  cfg.Upload.AllowedTypes,
		PreviewMaxDim: cfg.Upload.PreviewMaxDim,
	}

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	profileService := service.NewProfileService(profileRepo, objectStorage, policy, cfg.Profile, log)
	shareService := service.NewShareService(messageRepo, objectStorage, policy, log)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, profileService, shareService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info().Str("address", cfg.Server.Address).Msg("server starting")

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen and serve error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}
