package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/physia/backend/internal/config"
	"github.com/physia/backend/internal/database"
	"github.com/physia/backend/internal/logging"
	"github.com/physia/backend/internal/reminder"
	"github.com/physia/backend/internal/repo"
	"github.com/physia/backend/internal/schedule"
)

func main() {
	var date string
	var dryRun bool
	rootCmd := &cobra.Command{
		Use:          "reminder",
		Short:        "Send WhatsApp reminders for upcoming appointments",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), date, dryRun)
		},
	}
	rootCmd.Flags().StringVar(&date, "date", "", "appointment date YYYY-MM-DD (default: REMINDER_DAYS_AHEAD days from today in REMINDER_TZ)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the reminders without sending them")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Expose POST /trigger for an external scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type deps struct {
	cfg    *config.Config
	log    zerolog.Logger
	db     *gorm.DB
	store  *repo.Store
	sender reminder.Sender
	loc    *time.Location
}

// setup shares the backend database; migrations are applied by the API server.
func setup(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Env, cfg.LogLevel).With().Str("service", "reminder").Logger()
	db, err := database.Open(ctx, database.Options{URL: cfg.DatabaseURL, MaxConns: 4}, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.WhatsAppEnabled() {
		logger.Warn().Msg("AISENSY_API_KEY or AISENSY_CAMPAIGN empty, reminders will be skipped")
	}
	return &deps{
		cfg:    cfg,
		log:    logger,
		db:     db,
		store:  repo.NewStore(db),
		sender: reminder.DefaultSender(cfg.AiSensyAPIKey, cfg.AiSensyCampaign, cfg.AiSensyURL),
		loc:    reminder.LoadLocation(cfg.ReminderTZ, logger),
	}, nil
}

func runOnce(ctx context.Context, date string, dryRun bool) error {
	d, err := setup(ctx)
	if err != nil {
		return err
	}
	defer database.Close(d.db)

	target := reminder.TargetDate(time.Now(), d.loc, d.cfg.ReminderDays)
	if date != "" {
		target, err = time.ParseInLocation(schedule.DateLayout, date, d.loc)
		if err != nil {
			return errors.New("--date must be YYYY-MM-DD")
		}
	}
	res, err := reminder.SendAppointmentReminders(ctx, d.store, d.sender, target, reminder.Options{DryRun: dryRun, Logger: d.log})
	if err != nil {
		return err
	}
	d.log.Info().
		Str("date", target.Format(schedule.DateLayout)).
		Int("sent", res.Sent).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Bool("dry_run", dryRun).
		Msg("reminders done")
	return nil
}

func runServer() error {
	ctx := context.Background()
	d, err := setup(ctx)
	if err != nil {
		return err
	}
	defer database.Close(d.db)
	if d.cfg.ReminderAPIKey == "" && d.cfg.IsProduction() {
		return errors.New("REMINDER_API_KEY is required in production")
	}

	s := &reminder.Server{
		Store:     d.store,
		Sender:    d.sender,
		APIKey:    d.cfg.ReminderAPIKey,
		Location:  d.loc,
		DaysAhead: d.cfg.ReminderDays,
		Log:       d.log,
	}
	srv := &http.Server{
		Addr:         ":" + d.cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		d.log.Info().Str("port", d.cfg.Port).Msg("reminder listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
