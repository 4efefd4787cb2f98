package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinfix/clinfix/internal/config"
	"github.com/clinfix/clinfix/internal/domain/protocol"
	"github.com/clinfix/clinfix/internal/domain/scenario"
	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/platform/db"
	"github.com/clinfix/clinfix/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinfix-server",
		Short: "Surveillance protocol scenario evaluation server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scenario evaluation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// evaluateCmd runs a batch of scenarios from a JSON file without a server,
// using the in-memory reference catalog.
func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate scenarios from a JSON file and print outcome records",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			workers, _ := cmd.Flags().GetInt("workers")
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read scenario file: %w", err)
			}
			var scenarios []scenario.Scenario
			if err := json.Unmarshal(data, &scenarios); err != nil {
				return fmt.Errorf("parse scenario file: %w", err)
			}
			if len(scenarios) == 0 {
				return fmt.Errorf("scenario file %s contains no scenarios", file)
			}

			ctx := context.Background()
			catalog, err := terminology.NewService(terminology.NewRepoMem()).LoadCatalog(ctx)
			if err != nil {
				return fmt.Errorf("load reference catalog: %w", err)
			}

			svc := scenario.NewService(catalog, protocol.Defaults(), zerolog.Nop())
			outcomes := svc.EvaluateBatch(ctx, scenarios, workers)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(outcomes)
		},
	}
	cmd.Flags().String("file", "", "Path to a JSON array of scenarios")
	cmd.Flags().Int("workers", 4, "Number of concurrent evaluation workers")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run reference database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger := newLogger(cfg)

	ctx := context.Background()
	repo, pool, err := newReferenceRepo(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open reference source")
	}
	if pool != nil {
		defer pool.Close()
		logger.Info().Msg("connected to reference database")
	}

	catalog, err := terminology.NewService(repo).LoadCatalog(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load reference catalog")
	}
	logger.Info().
		Int("organisms", catalog.OrganismCount()).
		Int("drugs", catalog.DrugCount()).
		Msg("reference catalog loaded")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("10M"))
	e.Use(middleware.RequestTimeout(60 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))

	apiV1 := e.Group("/api/v1")

	scenarioSvc := scenario.NewService(catalog, protocol.Defaults(), logger)
	scenario.NewHandler(scenarioSvc, cfg.BatchWorkers).RegisterRoutes(apiV1)
	terminology.NewHandler(terminology.NewService(repo), catalog).RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(level).With().Timestamp().Logger()
	}
	return logger
}

// newReferenceRepo selects the reference repository per REFERENCE_SOURCE.
// The pool return value is nil for the in-memory source.
func newReferenceRepo(ctx context.Context, cfg *config.Config) (terminology.Repository, *pgxpool.Pool, error) {
	switch cfg.ReferenceSource {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		return terminology.NewRepoPG(pool), pool, nil
	default:
		return terminology.NewRepoMem(), nil, nil
	}
}
