package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/citadell/task-manager-api/services/auth-service/internal/config"
	"github.com/citadell/task-manager-api/services/auth-service/internal/handler"
	"github.com/citadell/task-manager-api/services/auth-service/internal/repository"
	"github.com/citadell/task-manager-api/services/auth-service/internal/usecase"
	"github.com/citadell/task-manager-api/shared/auth"
	"github.com/citadell/task-manager-api/shared/mailer"
	"github.com/citadell/task-manager-api/shared/provider"
	"github.com/citadell/task-manager-api/shared/registry"
	"github.com/citadell/task-manager-api/shared/validator"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "auth-service").Logger()

	cfg := config.NewAuthServiceConfig(&logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	verificationRepo := repository.NewVerificationTokenMongoRepository(ctx, &logger, db)
	resetRepo := repository.NewPasswordResetTokenMongoRepository(ctx, &logger, db)
	authTokenRepo := repository.NewAuthTokenMongoRepository(ctx, &logger, db)

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	smtpMailer := mailer.NewMailer(&logger)

	tokenUsecase := usecase.NewTokenUsecase(
		userRepo, verificationRepo, resetRepo, authTokenRepo, jwtAuth, smtpMailer, cfg,
	)
	authUsecase := usecase.NewAuthUsecase(userRepo, tokenUsecase, jwtAuth, cfg)
	oauthUsecase := usecase.NewOAuthUsecase(userRepo)

	providers := provider.NewRegistry(
		provider.NewGoogleProvider(
			cfg.OAuth.GoogleClientID,
			cfg.OAuth.GoogleClientSecret,
			cfg.OAuth.GoogleCallbackURL,
		),
		provider.NewGithubProvider(
			cfg.OAuth.GithubClientID,
			cfg.OAuth.GithubClientSecret,
			cfg.OAuth.GithubCallbackURL,
		),
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler.NewAuthHTTPHandler(
		router,
		authUsecase,
		tokenUsecase,
		oauthUsecase,
		providers,
		validator.New(),
		jwtAuth,
		cfg,
		&logger,
	)

	consulRegistry, err := registry.NewConsulRegistry(cfg.Consul.Address)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create Consul client")
	}
	if err := consulRegistry.Register(
		cfg.Consul.ServiceName,
		cfg.Consul.ServiceHost,
		cfg.Consul.ServicePort,
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to register service with Consul")
	}
	defer func() {
		if err := consulRegistry.Deregister(); err != nil {
			logger.Error().Err(err).Msg("failed to deregister service from Consul")
		}
	}()

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
	}

	go func() {
		logger.Info().Str("address", cfg.ServerAddress).Msg("auth service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down server gracefully")
	}
}
