package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/paw-chain/fluxagg/api"
	"github.com/paw-chain/fluxagg/app"
	"github.com/paw-chain/fluxagg/app/health"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// ServeCmd serves the ledger over the read gateway and the ops endpoints
// until interrupted. The serving process is the only writer of the ledger
// while it runs.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read gateway, metrics and health endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := homeDir(cmd)
			if err != nil {
				return err
			}
			cfg, err := ReadConfig(home)
			if err != nil {
				return err
			}

			telemetry, err := app.InitTelemetry(app.TelemetryConfig{
				Enabled:           cfg.Telemetry.Enabled,
				OTLPEndpoint:      cfg.Telemetry.OTLPEndpoint,
				PrometheusEnabled: cfg.Telemetry.MetricsAddress != "",
				SampleRate:        cfg.Telemetry.SampleRate,
				ChainID:           cfg.Fluxagg.ChainID,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize telemetry: %w", err)
			}
			middleware, err := app.NewTelemetryMiddleware(telemetry.Meter())
			if err != nil {
				return err
			}

			n, err := openNode(cmd, app.WithTelemetry(middleware))
			if err != nil {
				return err
			}
			defer n.Close()

			if err := n.connectEvents(); err != nil {
				return fmt.Errorf("failed to connect event publisher: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)

			if cfg.API.Enable {
				apiCfg, err := gatewayConfig(cfg.API)
				if err != nil {
					return err
				}
				server, err := api.NewServer(n.logger, n.app, apiCfg)
				if err != nil {
					return err
				}
				g.Go(func() error { return server.Start(ctx) })
			}

			if cfg.Telemetry.Enabled && cfg.Telemetry.MetricsAddress != "" {
				checker, err := health.NewChecker(n.logger, health.Config{
					MaxResponseTime: time.Second,
					StaleAfter:      cfg.Telemetry.StaleAfter,
					CacheDuration:   5 * time.Second,
					Version:         strconv.FormatUint(types.Version, 10),
				}, n.app, n.app.FluxaggKeeper)
				if err != nil {
					return err
				}
				ops := &http.Server{
					Addr:              cfg.Telemetry.MetricsAddress,
					Handler:           newOpsHandler(n.logger, checker),
					ReadHeaderTimeout: 5 * time.Second,
				}
				g.Go(func() error { return serveHTTP(ctx, n.logger, "ops", ops) })
			}

			sched, err := newMaintenance(n, cfg.Maintenance)
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			g.Go(func() error {
				<-ctx.Done()
				n.logger.Info("shutting down")
				return nil
			})

			err = g.Wait()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutdownErr := telemetry.Shutdown(shutdownCtx); shutdownErr != nil {
				n.logger.Error("telemetry shutdown failed", "error", shutdownErr)
			}
			return err
		},
	}
}

// gatewayConfig converts the [api] section into the gateway configuration.
func gatewayConfig(cfg APIConfig) (*api.Config, error) {
	host, port, err := net.SplitHostPort(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid api.address %q: %w", cfg.Address, err)
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Host = host
	apiCfg.Port = port
	apiCfg.RateLimitRPS = cfg.RateLimitRPS
	apiCfg.CORSOrigins = cfg.CORSOrigins
	apiCfg.RequireAuth = cfg.RequireAuth
	if cfg.JWTSecret != "" {
		apiCfg.JWTSecret = []byte(cfg.JWTSecret)
	}
	return apiCfg, nil
}
