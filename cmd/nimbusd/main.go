package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/nimbusdb/core/pkg/bufpool"
	"github.com/nimbusdb/core/pkg/clockutil"
	"github.com/nimbusdb/core/pkg/config"
	"github.com/nimbusdb/core/pkg/consensus"
	"github.com/nimbusdb/core/pkg/log"
	"github.com/nimbusdb/core/pkg/logmanager"
	"github.com/nimbusdb/core/pkg/metrics"
	"github.com/nimbusdb/core/pkg/transport"
	"github.com/nimbusdb/core/pkg/types"
	"github.com/nimbusdb/core/pkg/wal"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "nimbusd",
	Short:   "nimbusd - durability core node for NimbusDB",
	Long:    "nimbusd runs one node of NimbusDB's durability core: the Consensus-Driver, the WAL-Manager, and the buffer pool they share.",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("nimbusd version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	runCmd.Flags().String("config", "./nimbusd.yaml", "Path to node configuration file")
	runCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for the metrics/health HTTP server")
	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(logLevel), Pretty: !logJSON})
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run this node's durability core",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		return runNode(cfg, metricsAddr)
	},
}

const bufferSizeBytes = 64 * 1024

func runNode(cfg config.Config, metricsAddr string) error {
	self := types.Node{Host: cfg.NodeHost, Port: cfg.NodePort}
	peers := make([]types.Node, 0, len(cfg.Peers))
	for _, p := range cfg.Peers {
		peers = append(peers, types.Node{Host: p.Host, Port: p.Port})
	}

	pool := bufpool.New(cfg.BufferPoolSize, bufferSizeBytes)

	watermarkStore, err := bufpool.OpenWatermarkStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open watermark store: %w", err)
	}
	defer watermarkStore.Close()
	if hw, err := watermarkStore.Load(); err != nil {
		log.WithComponent("bufpool").Warn().Err(err).Msg("failed to load persisted high-water mark")
	} else {
		pool.SeedHighWater(hw)
	}

	clock := clockutil.Real{}
	walMgr := wal.New(cfg, clock, pool.Sink())
	logMgr := logmanager.New()

	gt := transport.NewGRPCTransport()
	defer gt.Close()

	driver := consensus.New(self, peers, cfg, clock, gt, logMgr)

	grpcServer := grpc.NewServer()
	transport.RegisterReceiver(grpcServer, driver)

	lis, err := net.Listen("tcp", self.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", self.Addr(), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	walMgr.Start(ctx)

	// The consensus loop, the RPC dispatcher, and (below) the metrics HTTP
	// server run under one errgroup; the WAL force-sync scheduler started by
	// walMgr.Start above runs on ctx. When any group member fails, the node
	// shuts down instead of leaking a half-running node.
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		driver.Run(groupCtx)
		return nil
	})
	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	collector := metrics.NewCollector(driver, walMgr, pool, nil)
	collector.Start()
	defer collector.Stop()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("consensus", true, "running")
	metrics.RegisterComponent("wal", true, "running")
	metrics.RegisterComponent("api", true, "running")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	httpServer := &http.Server{Addr: metricsAddr, Handler: mux}

	group.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	log.WithComponent("nimbusd").Info().Str("addr", self.Addr()).Str("metrics_addr", metricsAddr).Msg("node started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- group.Wait() }()

	select {
	case <-sigCh:
		log.WithComponent("nimbusd").Info().Msg("shutting down")
	case <-groupCtx.Done():
		log.WithComponent("nimbusd").Info().Msg("worker failed, shutting down")
	}

	cancel()
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)

	if err := <-runErrCh; err != nil {
		log.WithComponent("nimbusd").Error().Err(err).Msg("worker group exited with error")
	}

	walMgr.Stop()
	if err := watermarkStore.Save(pool.HighWater()); err != nil {
		log.WithComponent("bufpool").Warn().Err(err).Msg("failed to persist high-water mark")
	}

	return nil
}
