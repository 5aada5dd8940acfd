package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinica/sistema/internal/config"
	"github.com/clinica/sistema/internal/domain/ambulance"
	"github.com/clinica/sistema/internal/domain/directory"
	"github.com/clinica/sistema/internal/domain/patient"
	"github.com/clinica/sistema/internal/domain/scheduling"
	"github.com/clinica/sistema/internal/platform/auth"
	"github.com/clinica/sistema/internal/platform/db"
	"github.com/clinica/sistema/internal/platform/mail"
	"github.com/clinica/sistema/internal/platform/middleware"
	"github.com/clinica/sistema/internal/platform/sandbox"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "clinica-server",
		Short:   "Clinic appointment booking server",
		Version: version,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	var migrationsDir string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(migrationsDir)
		},
	}

	migrateStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(migrationsDir)
		},
	}

	migrateCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "path to migrations directory")
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo specialties, doctors and slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	rateCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateCfg = middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		}
	}

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rateCfg))

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLMin)*time.Minute)
	protected := apiV1.Group("", auth.Middleware(tokens))

	var sender mail.Sender
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.ClinicEmail,
		}, logger)
	} else {
		logger.Warn().Msg("SMTP_HOST not set, confirmation emails will only be logged")
		sender = mail.NewLogSender(logger)
	}

	// Directory: specialties and the doctor roster.
	specialtyRepo := directory.NewSpecialtyRepoPG(pool)
	doctorRepo := directory.NewDoctorRepoPG(pool)
	directorySvc := directory.NewService(specialtyRepo, doctorRepo)
	directory.NewHandler(directorySvc).RegisterRoutes(apiV1)

	// Patients: registration, login, addresses.
	patientRepo := patient.NewRepoPG(pool)
	addressRepo := patient.NewAddressRepoPG(pool)
	patientSvc := patient.NewService(patientRepo, addressRepo)
	patient.NewHandler(patientSvc, tokens).RegisterRoutes(apiV1, protected)

	// Scheduling: slots, appointments, confirmation emails.
	slotRepo := scheduling.NewSlotRepoPG(pool)
	apptRepo := scheduling.NewAppointmentRepoPG(pool)
	notifRepo := scheduling.NewNotificationRepoPG(pool)
	schedulingSvc := scheduling.NewService(
		slotRepo, apptRepo, notifRepo,
		patientRepo, doctorRepo,
		db.NewTxRunner(pool), sender, logger,
	)
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(protected)

	// Ambulance dispatch requests.
	ambulanceSvc := ambulance.NewService(patientSvc, logger)
	ambulance.NewHandler(ambulanceSvc).RegisterRoutes(protected)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runMigrate(dir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	count, err := db.NewMigrator(pool, dir).Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info().Int("applied", count).Msg("migrations complete")
	return nil
}

func runMigrateStatus(dir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	statuses, err := db.NewMigrator(pool, dir).Status(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied " + s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
	}
	return nil
}

func runSeed() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	seeder := sandbox.NewSeeder(
		directory.NewSpecialtyRepoPG(pool),
		directory.NewDoctorRepoPG(pool),
		patient.NewRepoPG(pool),
		scheduling.NewSlotRepoPG(pool),
		cfg.SeedDays,
		logger,
	)
	return seeder.Run(ctx)
}
