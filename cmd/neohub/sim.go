package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sonirico/neohub/neohubtest"
	"github.com/spf13/cobra"
)

// the living room motion sensor of the demo panel
const (
	flapSession = "neo-1"
	flapZone    = 2
)

func simCmd(cfg *Config) *cobra.Command {
	var (
		addr string
		flap time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a simulated hub serving a demo panel",
		Long: `sim serves the NeoHub websocket API on /api/ws with one demo panel. It
answers full state requests, applies arm/disarm commands and, with --flap,
opens and closes a zone periodically. The access token, when configured, is
required from clients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return simulate(ctx, cfg, addr, flap)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to serve the hub on")
	cmd.Flags().DurationVar(&flap, "flap", 0, "toggle the living room zone at this interval (0 disables)")

	return cmd
}

func simulate(ctx context.Context, cfg *Config, addr string, flap time.Duration) error {
	hub := neohubtest.New(
		neohubtest.WithAccessToken(cfg.AccessToken),
		neohubtest.WithSessions(neohubtest.DemoSessions()...),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("simulated hub listening", "addr", addr, "auth", cfg.AccessToken != "")
		errs <- srv.ListenAndServe()
	}()

	var tick <-chan time.Time
	if flap > 0 {
		ticker := time.NewTicker(flap)
		defer ticker.Stop()
		tick = ticker.C
	}

	open := false
	for {
		select {
		case err := <-errs:
			return err
		case <-tick:
			open = !open
			hub.SetZone(flapSession, flapZone, open)
			log.Debug("zone flapped", "zone", flapZone, "open", open)
		case <-ctx.Done():
			log.Info("stopping...")
			hub.DropClients()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	}
}
