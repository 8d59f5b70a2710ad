package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/physia/backend/internal/api"
	"github.com/physia/backend/internal/auth"
	"github.com/physia/backend/internal/cache"
	"github.com/physia/backend/internal/clients"
	"github.com/physia/backend/internal/config"
	"github.com/physia/backend/internal/database"
	"github.com/physia/backend/internal/logging"
	"github.com/physia/backend/internal/metrics"
	"github.com/physia/backend/internal/middleware"
	"github.com/physia/backend/internal/migrate"
	"github.com/physia/backend/internal/repo"
	"github.com/physia/backend/internal/schedule"
	"github.com/physia/backend/internal/seed"
	"github.com/physia/backend/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "physia",
		Short:        "Appointment scheduling API",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), database.Options{URL: cfg.DatabaseURL, MaxConns: 2}, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)
			return migrate.Run(cmd.Context(), db, migrations.FS)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), database.Options{URL: cfg.DatabaseURL, MaxConns: 2}, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)
			pending, err := migrate.PendingInDB(cmd.Context(), db, migrations.FS)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "up to date")
			}
			for _, name := range pending {
				fmt.Fprintln(cmd.OutOrStdout(), "pending", name)
			}
			return nil
		},
	})
	return cmd
}

// tokenCmd mints a bearer token for local testing. Login lives in the identity service.
func tokenCmd() *cobra.Command {
	var role, org, prof, user string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return errors.New("token is disabled in production")
			}
			var profID *string
			if prof != "" {
				profID = &prof
			}
			tok, err := auth.BuildJWT(cfg.JWTSecret, user, role, org, profID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", auth.RoleOwner, "OWNER, STAFF or PROFESSIONAL")
	cmd.Flags().StringVar(&org, "org", "", "organization id")
	cmd.Flags().StringVar(&prof, "professional", "", "professional id (PROFESSIONAL tokens)")
	cmd.Flags().StringVar(&user, "user", "dev", "user id")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a demo organization in an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return errors.New("seed is disabled in production")
			}
			db, err := database.Open(cmd.Context(), database.Options{URL: cfg.DatabaseURL, MaxConns: 2}, logger)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := migrate.Run(cmd.Context(), db, migrations.FS); err != nil {
				return err
			}
			res, err := seed.Run(cmd.Context(), db, time.Now(), logger)
			if err != nil {
				return err
			}
			if !res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "organization", res.OrganizationID)
				for _, p := range res.Professionals {
					fmt.Fprintln(cmd.OutOrStdout(), "professional", p)
				}
			}
			return nil
		},
	}
}

func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.Setup(cfg.Env, cfg.LogLevel), nil
}

func runServer() error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	ctx := context.Background()

	db, err := database.Open(ctx, database.Options{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MaxConnLifetime: time.Hour,
		Debug:           cfg.LogLevel == "debug",
	}, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := migrate.Run(ctx, db, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	ttl := time.Duration(cfg.CacheTTLSec) * time.Second
	var store cache.Store
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: "physia:",
		}, ttl)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-memory cache")
		} else {
			defer rc.Close()
			store = rc
		}
	}
	if store == nil {
		mem := cache.New(ttl)
		defer mem.Close()
		store = mem
	}

	repoStore := repo.NewStore(db)
	svc := schedule.NewService(schedule.Options{
		Appointments: repoStore,
		SpecialDays:  repoStore,
		Hours:        repoStore,
		Cache:        store,
		DefaultHours: defaultHours(cfg, logger),
		Logger:       logger,
	})
	h := &api.Handler{
		Store:    repoStore,
		Schedule: svc,
		Clients:  clients.NewLookup(repoStore, logger),
		Cfg:      cfg,
		Log:      logger.With().Str("component", "api").Logger(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := repoStore.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"db unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	h.Register(r, cfg.JWTSecret, middleware.NewRateLimiter(cfg.PublicRatePerMin, cfg.TrustedProxyHops))

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	chain := middleware.Recover(middleware.RequestID(middleware.AccessLog(logger)(middleware.Timeout(timeout)(middleware.CORS(cfg.CORSOrigins)(r)))))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("api listening")
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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("api stopped")
	return nil
}

// defaultHours parses DEFAULT_OPENS/DEFAULT_CLOSES, falling back to 08:00-20:00.
func defaultHours(cfg *config.Config, logger zerolog.Logger) schedule.Hours {
	opens, errO := schedule.ParseTimeOfDay(cfg.DefaultOpens)
	closes, errC := schedule.ParseTimeOfDay(cfg.DefaultCloses)
	if errO != nil || errC != nil || opens.Minutes() >= closes.Minutes() {
		logger.Warn().
			Str("opens", cfg.DefaultOpens).
			Str("closes", cfg.DefaultCloses).
			Msg("invalid default hours, using 08:00-20:00")
		return schedule.DefaultHours
	}
	return schedule.Hours{Opens: opens, Closes: closes}
}
