// Command testmo-mcp runs the Testmo MCP server. It speaks the Model
// Context Protocol over stdin/stdout, so all diagnostics go to stderr.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"testmo-mcp-server/internal/config"
	"testmo-mcp-server/internal/fieldmap"
	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/internal/tools"
	"testmo-mcp-server/pkg/client"
	"testmo-mcp-server/pkg/logging"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configPath  string
	logLevel    string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "testmo-mcp",
	Short: "MCP server for the Testmo test management API",
	Long: `testmo-mcp exposes the Testmo test management API as MCP tools over
stdin/stdout, for use by MCP-capable assistants.

Configuration is read from an optional YAML file and the environment:

  TESTMO_URL        Testmo instance URL (e.g. https://acme.testmo.net)
  TESTMO_API_KEY    Testmo API token
  TESTMO_LOG_LEVEL  Log level written to stderr (debug, info, warn, error)

stdout carries only protocol frames; logs go to stderr.`,
	Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Output: os.Stderr,
	})

	c, err := client.New(client.Config{
		BaseURL:   cfg.TestmoURL,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
		PageDelay: cfg.PageDelay,
	})
	if err != nil {
		return fmt.Errorf("create Testmo client: %w", err)
	}
	defer c.Close()

	mappings := fieldmap.Default()
	if cfg.FieldMappings != "" {
		mappings, err = fieldmap.Load(cfg.FieldMappings)
		if err != nil {
			return fmt.Errorf("load field mappings: %w", err)
		}
		logger.Info().Str("path", cfg.FieldMappings).Msg("Loaded field mapping overrides")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	registry := tools.New(c, mappings)
	server := mcp.NewServer(mcp.NewStdioTransport(), registry, version)
	defer server.Close()

	logger.Info().
		Str("version", version).
		Str("testmo_url", cfg.TestmoURL).
		Int("tools", len(registry.Tools())).
		Msg("Starting Testmo MCP server on stdio")

	return server.Run(ctx)
}

// serveMetrics exposes the Prometheus endpoint. Failures are logged, not
// fatal: metrics are optional, the stdio session is not.
func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info().Str("addr", addr).Msg("Serving Prometheus metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server stopped")
	}
}
