package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itsatony/senser/docs"
	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/hubservice"
	"github.com/itsatony/senser/internal/monitoring"
	"github.com/itsatony/senser/internal/server"
	"github.com/spf13/cobra"
	nuts "github.com/vaudience/go-nuts"
)

var (
	cfgFile string
	noLogo  bool
)

var rootCmd = &cobra.Command{
	Use:   "senser",
	Short: "Sensor telemetry API over six backing stores",
	Long: `senser registers sensors and their readings across Postgres, MongoDB,
Cassandra, TimescaleDB, Redis and Elasticsearch, and serves current readings,
bucketed history, summaries and search over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !noLogo {
			ClearConsole()
			DrawLogo()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&noLogo, "no-logo", false, "skip the console logo")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and connects every store. The returned
// context is cancelled on SIGINT or SIGTERM.
func bootstrap(component string) (context.Context, context.CancelFunc, *config.Config, *hubservice.HubService, error) {
	nuts.L.Infof("[Main] Starting Senser %s v%s", component, nuts.GetVersion())
	docs.SwaggerInfo.Version = nuts.GetVersion()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	svc, err := server.InitializeHubService(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, fmt.Errorf("failed to initialize stores: %w", err)
	}
	return ctx, cancel, cfg, svc, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API (default command)",
	RunE:  runServe,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Record readings published on MQTT",
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(serveCmd, ingestCmd)
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, svc, err := bootstrap("API")
	if err != nil {
		return err
	}
	defer cancel()
	defer server.CloseStores(svc)

	srv := server.New(cfg, svc, monitoring.NewService())
	if err := srv.Start(ctx); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		return err
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, svc, err := bootstrap("Ingest")
	if err != nil {
		return err
	}
	defer cancel()
	defer server.CloseStores(svc)

	if err := server.RunIngest(ctx, cfg, svc, monitoring.NewService()); err != nil {
		nuts.L.Errorf("[Main] Ingest error: %v", err)
		return err
	}
	return nil
}
