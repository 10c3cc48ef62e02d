// api serves the conference Q&A HTTP API and the live question WebSocket.
//
// @title Conference Q&A API
// @version 1.0
// @description Conferences, audience questions and live new-question notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"conferenceqa/config"
	_ "conferenceqa/docs"
	"conferenceqa/internal/adapters/auth"
	"conferenceqa/internal/adapters/email"
	"conferenceqa/internal/db"
	"conferenceqa/internal/db/migrate"
	deliveryhttp "conferenceqa/internal/delivery/http"
	"conferenceqa/internal/delivery/http/controllers"
	"conferenceqa/internal/delivery/http/middleware"
	"conferenceqa/internal/delivery/ws"
	"conferenceqa/internal/realtime"
	"conferenceqa/internal/repository/postgres"
	"conferenceqa/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.MigrateOnStart {
		if err := migrate.Run(cfg.DBUrl, migrate.Up); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	database, err := db.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer database.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(database)
	roleRepo := postgres.NewRoleRepository(database)
	conferenceRepo := postgres.NewConferenceRepository(database)
	questionRepo := postgres.NewQuestionRepository(database)

	// Live fan-out
	broker := realtime.NewBroker(logger, cfg.RealtimeBuffer)
	defer broker.Close()
	publisher := realtime.NewPublisher(broker, logger)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	hasher := auth.NewBcryptHasher(auth.DefaultBcryptCost)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	authService := services.NewAuthService(userRepo, roleRepo, hasher, issuer, cfg.JWTExpiry, emailService, logger)
	conferenceService := services.NewConferenceService(conferenceRepo, questionRepo, cfg.ContextTimeout)
	questionService := services.NewQuestionService(conferenceRepo, questionRepo, publisher, logger, cfg.ContextTimeout)

	live := ws.NewLiveHandler(conferenceService, broker, cfg.AllowedOrigins, logger)
	defer live.Close()

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Auth:       controllers.NewAuthController(logger, authService),
		User:       controllers.NewUserController(logger, authService),
		Conference: controllers.NewConferenceController(logger, conferenceService),
		Question:   controllers.NewQuestionController(logger, questionService),
		Health:     controllers.NewHealthController(logger, database),
		Live:       live,
	}, middleware.RequireAuth(verifier, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Hijacked WebSocket connections are not tracked by Shutdown.
		live.Close()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
