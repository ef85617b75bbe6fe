package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/UnknownOlympus/shooter/internal/config"
	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/layer"
	"github.com/UnknownOlympus/shooter/internal/locator"
	"github.com/UnknownOlympus/shooter/internal/metrics"
	"github.com/UnknownOlympus/shooter/internal/replay"
	"github.com/UnknownOlympus/shooter/internal/repository"
	"github.com/UnknownOlympus/shooter/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// app bundles everything the subcommands share.
type app struct {
	log    *slog.Logger
	reg    *prometheus.Registry
	runner *replay.Runner
	store  *layer.Store
	db     server.Pinger
	port   int
	close  func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "shooter",
		Short:        "Author antenna sector wedges on a map",
		SilenceUsage: true,
	}
	root.AddCommand(newReplayCmd(), newServeCmd())

	return root
}

func newReplayCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Replay a recorded pointer session and export the layers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			script, err := replay.Load(args[0])
			if err != nil {
				return err
			}

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.runner.Run(ctx, script, a.store)
			if err != nil {
				return err
			}

			if outDir != "" {
				if err = exportLayers(a.store, outDir); err != nil {
					return err
				}
				a.log.InfoContext(ctx, "Layers exported", "dir", outDir)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write <layer>.geojson files into")

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve replays, layer exports, health and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			a.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")
			srv := server.New(a.log, a.runner, a.store, a.reg, a.db)
			if err = srv.ListenAndServe(ctx, a.port); err != nil {
				return err
			}
			a.log.InfoContext(ctx, "Application stopped gracefully.")

			return nil
		},
	}
}

// setup loads configuration and builds the engine, locator, store and runner.
func setup(ctx context.Context) (*app, error) {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, err
	}

	crs := geometry.ParseCRS(cfg.CRS)
	transformer, err := geometry.NewTransformer(crs, cfg.CRSProj4)
	if err != nil {
		return nil, fmt.Errorf("failed to set up CRS %s: %w", cfg.CRS, err)
	}
	engine := geometry.NewEngine(crs, transformer)

	var loc locator.Locator
	if cfg.LocatorType != "" {
		loc, err = locator.New(locator.Config{
			Type:   locator.Type(cfg.LocatorType),
			APIKey: cfg.LocatorKey,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create locator: %w", err)
		}
		logger.InfoContext(ctx, "Locator initialized", "type", cfg.LocatorType)
	}

	a := &app{log: logger, reg: reg, port: cfg.Port, close: func() {}}

	var persister layer.Persister
	if cfg.Database.Enabled() {
		dtb, dbErr := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if dbErr != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", dbErr)
		}
		repo := repository.NewRepository(dtb, logger)
		if err = repo.Migrate(ctx); err != nil {
			dtb.Close()
			return nil, err
		}
		persister, a.db, a.close = repo, dtb, dtb.Close
	}

	a.store = layer.NewStore(logger, persister)
	if err = a.store.Load(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.runner = replay.NewRunner(logger, appMetrics, settings, engine, loc)

	return a, nil
}

func exportLayers(store *layer.Store, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, name := range store.Layers() {
		data, err := store.GeoJSON(name)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name+".geojson")
		if err = os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
