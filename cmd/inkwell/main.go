package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"inkwell/internal/auth"
	"inkwell/internal/avatar"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/events"
	"inkwell/internal/handlers"
	"inkwell/internal/mailer"
	"inkwell/internal/otel"
	"inkwell/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	cleanup, err := otel.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	database, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := db.Migrate(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	st := store.New(database)

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		hash, err := hasher.Hash(cfg.SeedAdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("hash seed password")
		}
		seed := db.AdminSeed{Email: cfg.SeedAdminEmail, PasswordHash: hash}
		if err := db.Seed(ctx, database, seed); err != nil {
			log.Fatal().Err(err).Msg("seed database")
		}
	}

	avatars, err := buildAvatarStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init avatar store")
	}

	mail, err := buildMailer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init mailer")
	}

	publisher, err := events.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect nats")
	}
	defer publisher.Close()

	tokens := auth.NewTokens(cfg.Secret, cfg.SessionTTL, cfg.RememberTTL, cfg.ResetTokenTTL)
	authSvc := auth.NewService(st.Users, hasher)

	api, err := handlers.New(st, authSvc, tokens, avatars, mail, publisher, handlers.Config{
		BaseURL:        cfg.BaseURL,
		AllowedOrigins: cfg.AllowedOrigins,
		PageSize:       cfg.PageSize,
		MaxPageSize:    cfg.MaxPageSize,
		ResetTTL:       cfg.ResetTokenTTL,
		MaxAvatarBytes: cfg.MaxAvatarSize,
		CookieSecure:   cfg.CookieSecure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init handlers")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting inkwell")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}

func buildAvatarStore(ctx context.Context, cfg config.Config) (avatar.Store, error) {
	if cfg.S3Endpoint != "" {
		return avatar.NewS3(ctx, avatar.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
	}
	return avatar.NewDisk(cfg.AvatarDir)
}

func buildMailer(cfg config.Config) (mailer.Mailer, error) {
	if cfg.SMTPHost == "" {
		return mailer.Log{}, nil
	}
	return mailer.NewSMTP(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}
