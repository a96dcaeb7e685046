package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/troindx/oxidize/internal/auth"
	"github.com/troindx/oxidize/internal/config"
	"github.com/troindx/oxidize/internal/database"
	"github.com/troindx/oxidize/internal/handler"
	"github.com/troindx/oxidize/internal/mailer"
	"github.com/troindx/oxidize/internal/middleware"
	"github.com/troindx/oxidize/internal/repository"
	"github.com/troindx/oxidize/internal/server"
	"github.com/troindx/oxidize/internal/translator"
	"github.com/troindx/oxidize/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.New(&logger)
	if cfg.IsDev() {
		logger.Warn().Msg("running in dev mode")
	}

	ctx := context.Background()

	client, db := database.Connect(ctx, &logger, &cfg.Mongo)
	defer database.Disconnect(ctx, &logger, client)

	registry := database.NewRegistry()
	userRepo := repository.NewUserMongoRepository(ctx, &logger, db, registry)
	verificationRepo := repository.NewEmailVerificationMongoRepository(ctx, &logger, db, registry)

	// Dev mode starts from empty collections. The reset runs after the
	// repository constructors so the unique indexes they create survive.
	if cfg.IsDev() {
		if err := registry.Reset(ctx, db); err != nil {
			logger.Fatal().Err(err).Msg("failed to reset dev database")
		}
	}

	tr, err := translator.New(cfg.DefaultLocale)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize translator")
	}

	sender := mailer.NewMailer(&logger, tr, cfg.AppBaseURL, cfg.DefaultLocale, cfg.IsDev())

	userUsecase := usecase.NewUserUsecase(userRepo)
	verificationUsecase := usecase.NewVerificationUsecase(
		verificationRepo,
		sender,
		&logger,
		cfg.VerificationSecretLength,
	)

	authn := auth.NewAuthenticator(cfg.AppBaseURL)
	guard := middleware.NewGuard(userRepo, authn, &logger)

	userHandler := handler.NewUserHTTPHandler(userUsecase, &logger)
	verificationHandler := handler.NewVerificationHTTPHandler(verificationUsecase, &logger)

	router := server.Router(&logger, guard, userHandler, verificationHandler)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Errors surface here instead of exiting inside the serve goroutine,
	// so the deferred database disconnect still runs.
	if err := server.Run(runCtx, &logger, ":"+strconv.Itoa(cfg.HTTPPort), router); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
}
