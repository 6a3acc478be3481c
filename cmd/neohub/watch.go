package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sonirico/neohub"
	"github.com/spf13/cobra"
)

func watchCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Mirror the hub, log every change and export metrics",
		Long: `watch keeps a connection to the hub open, reconnecting when it drops,
logs every event and serves Prometheus metrics on /metrics and the mirrored
state as JSON on /state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cfg)
		},
	}
}

func watch(ctx context.Context, cfg *Config) error {
	cli, err := newClient(cfg)
	if err != nil {
		return err
	}
	subscribe(cli)

	if err := cli.Connect(ctx); err != nil {
		return describe(err)
	}
	defer cli.Disconnect()

	if err := waitForState(ctx, cli); err != nil {
		// updates are still mirrored once the hub answers
		log.Warn("continuing without initial state", "err", err)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router(cli),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("serving metrics", "addr", cfg.Listen)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// subscribe logs every client event and keeps the metrics in sync.
func subscribe(cli *neohub.Client) {
	cli.OnConnect(func() {
		connectedGauge.Set(1)
		eventsCounter.WithLabelValues(string(neohub.EventConnect)).Inc()
	})
	cli.OnDisconnect(func() {
		connectedGauge.Set(0)
		eventsCounter.WithLabelValues(string(neohub.EventDisconnect)).Inc()
	})
	cli.OnFullState(func(fs neohub.FullState) {
		eventsCounter.WithLabelValues(string(neohub.EventFullState)).Inc()
		exportState(fs.State)
	})
	cli.OnPartitionUpdate(func(u neohub.PartitionUpdate) {
		eventsCounter.WithLabelValues(string(neohub.EventPartitionUpdate)).Inc()
		p, ok := cli.State().Partition(u.SessionID, u.PartitionNumber)
		if !ok {
			log.Warn("update for unknown partition", "session", u.SessionID, "partition", u.PartitionNumber)
			return
		}
		log.Info("partition", "session", u.SessionID, "name", p.DisplayName(), "status", p.Status)
		exportPartition(u.SessionID, p)
	})
	cli.OnZoneUpdate(func(u neohub.ZoneUpdate) {
		eventsCounter.WithLabelValues(string(neohub.EventZoneUpdate)).Inc()
		z, ok := cli.State().Zone(u.SessionID, u.ZoneNumber)
		if !ok {
			log.Warn("update for unknown zone", "session", u.SessionID, "zone", u.ZoneNumber)
			return
		}
		log.Info("zone", "session", u.SessionID, "name", z.DisplayName(), "open", z.Open)
		exportState(cli.State())
	})
	cli.OnError(func(string) {
		eventsCounter.WithLabelValues(string(neohub.EventError)).Inc()
	})
}

func router(cli *neohub.Client) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"connected": cli.Connected(),
			"sessions":  render(cli.State()),
		})
	})
	return r
}
