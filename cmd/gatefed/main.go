package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/toolmesh/gatefed/internal/connector"
	"github.com/toolmesh/gatefed/internal/eventbus"
	"github.com/toolmesh/gatefed/internal/gateway"
	"github.com/toolmesh/gatefed/internal/health"
	"github.com/toolmesh/gatefed/internal/leaderelect"
	"github.com/toolmesh/gatefed/internal/store"
	"github.com/toolmesh/gatefed/pkg/api"
	"github.com/toolmesh/gatefed/pkg/config"
	"github.com/toolmesh/gatefed/pkg/log"
	"github.com/toolmesh/gatefed/pkg/metrics"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "gatefed",
	Short:   "gatefed federates a fleet of upstream tool gateways behind one control plane",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("gatefed version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	serveCmd.Flags().String("config", "", "Path to gatefed.yaml (defaults are used if omitted)")
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the federation service: registry, leader election, and the health loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		bus := eventbus.New()

		elector, err := leaderelect.New(cfg.CacheType, leaderelect.RaftFactoryConfig{
			NodeID:   cfg.NodeID,
			BindAddr: cfg.RaftBindAddr,
			DataDir:  cfg.RaftDataDir,
			Peers:    cfg.RaftPeers,
		}, cfg.FilelockPath)
		if err != nil {
			return fmt.Errorf("build leader elector: %w", err)
		}

		registry, err := gateway.New(ctx, st, bus, connector.New(), nil)
		if err != nil {
			return fmt.Errorf("build registry: %w", err)
		}

		monitor := health.New(registry, elector, health.Config{
			Interval:         cfg.HealthCheckInterval,
			ProbeTimeout:     cfg.ProbeTimeout,
			FailureThreshold: cfg.UnhealthyThreshold,
		})

		collector := metrics.NewCollector(registry, bus, elector)
		collector.Start()
		defer collector.Stop()

		go runElectionLoop(ctx, elector)
		go monitor.Run(ctx)

		healthServer := api.NewHealthServer(elector, registry)
		errCh := make(chan error, 1)
		go func() {
			if err := healthServer.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("health server: %w", err)
			}
		}()

		fmt.Printf("gatefed serving; health endpoints on http://%s/health, /ready, /metrics\n", cfg.ListenAddr)

		select {
		case <-ctx.Done():
			fmt.Println("shutting down...")
		case err := <-errCh:
			return err
		}

		return elector.Release(context.Background())
	},
}

// runElectionLoop periodically attempts to acquire or refresh leadership.
// None of the three backends self-drive this: raft tracks state passively,
// filelock and none need an explicit caller to make progress.
func runElectionLoop(ctx context.Context, elector leaderelect.Elector) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		if _, err := elector.TryAcquire(ctx); err != nil {
			log.WithComponent("leaderelect").Warn().Err(err).Msg("leadership acquisition attempt failed")
		} else if err := elector.Refresh(ctx); err != nil {
			log.WithComponent("leaderelect").Warn().Err(err).Msg("leadership refresh failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
