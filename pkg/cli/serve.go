package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hookcatch/hookcatch/internal/storage"
	"github.com/hookcatch/hookcatch/pkg/api"
	"github.com/hookcatch/hookcatch/pkg/capture"
	"github.com/hookcatch/hookcatch/pkg/config"
	"github.com/hookcatch/hookcatch/pkg/logging"
	"github.com/hookcatch/hookcatch/pkg/metrics"
	"github.com/hookcatch/hookcatch/pkg/token"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 15 * time.Second

type serveFlags struct {
	configPath string
	host       string
	port       int
	baseURL    string
	dataDir    string
	inMemory   bool
	logLevel   string
	logFormat  string
}

var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook capture server (foreground)",
	Example: `  # Start with defaults on port 3000
  hookcatch serve

  # Persist captures under ./data and expose a public base URL
  hookcatch serve --data-dir ./data --base-url https://hooks.example.com

  # Ephemeral in-memory instance for local testing
  hookcatch serve --in-memory --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, &serveFlagVals)
	},
}

func initServeCmd() {
	rootCmd.AddCommand(serveCmd)

	f := &serveFlagVals
	serveCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to YAML config file")
	serveCmd.Flags().StringVar(&f.host, "host", "", "Host to bind")
	serveCmd.Flags().IntVarP(&f.port, "port", "p", 0, "HTTP server port")
	serveCmd.Flags().StringVar(&f.baseURL, "base-url", "", "Base URL used in webhook URLs")
	serveCmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Directory for the capture store")
	serveCmd.Flags().BoolVar(&f.inMemory, "in-memory", false, "Keep all data in memory, nothing survives a restart")
	serveCmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format (text, json)")
}

func runServe(cmd *cobra.Command, f *serveFlags) error {
	// A .env file is optional.
	_ = godotenv.Load()

	cfg, err := loadServeConfig(f)
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	dir := cfg.DataDir
	if f.inMemory {
		dir = ":memory:"
	}
	store, err := storage.Open(dir, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("error closing store", "error", err)
		}
	}()

	srv := api.NewServer(cfg,
		token.NewRegistry(store, log),
		capture.NewService(store, log),
		api.WithLogger(log),
		api.WithMetrics(metrics.New()),
		api.WithVersion(buildInfo.Version),
	)

	if err := srv.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadServeConfig layers flags over environment variables over the config
// file over defaults.
func loadServeConfig(f *serveFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if f.host != "" {
		cfg.Host = f.host
	}
	if f.port != 0 {
		cfg.Port = f.port
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.dataDir != "" {
		cfg.DataDir = f.dataDir
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
