package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/latticewire/peerdag/pkg/healthd"
	"github.com/latticewire/peerdag/pkg/log"
	"github.com/latticewire/peerdag/pkg/metrics"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run this peer's health and metrics endpoints until interrupted",
	Long: `serve opens the peer's identity and store, starts the gRPC health
server and the Prometheus metrics HTTP endpoint, and blocks until SIGINT
or SIGTERM. It does not itself accept or author patches; use commit and
sync for that, against the same --data-dir.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "127.0.0.1:7420", "Health server listen address")
	serveCmd.Flags().String("metrics-listen", "127.0.0.1:7421", "Prometheus metrics listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	listenAddr, _ := cmd.Flags().GetString("listen")
	metricsAddr, _ := cmd.Flags().GetString("metrics-listen")

	p, st, err := openPeer(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	health, err := healthd.Listen(listenAddr)
	if err != nil {
		return fmt.Errorf("start health server: %w", err)
	}
	go func() {
		if err := health.Serve(); err != nil {
			log.Errorf("health server stopped", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server stopped", err)
		}
	}()

	health.SetServing()
	log.Info(fmt.Sprintf("peer %s serving: health on %s, metrics on %s", p.PeerID(), listenAddr, metricsAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	health.Stop(context.Background())
	_ = metricsSrv.Close()
	return nil
}
