package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/agentdeck/backend"
	"pkt.systems/agentdeck/internal/appconfig"
	"pkt.systems/agentdeck/schema"
	"pkt.systems/agentdeck/transport"
	"pkt.systems/pslog"
)

func newDoctorCmd() *cobra.Command {
	var cfgPath string
	var timeout time.Duration
	var checkDesktop bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run agentdeck diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			logger.Info("doctor start", "backend_url", cfg.BackendURL)

			endpoint, err := transport.Endpoint(cfg.BackendURL, schema.NewClientID())
			if err != nil {
				return fmt.Errorf("doctor endpoint: %w", err)
			}
			logger.Info("doctor websocket endpoint ok", "endpoint", endpoint)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client := backend.New(cfg.BackendURL, logger)
			sessions, err := client.ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("doctor backend unreachable: %w", err)
			}
			logger.Info("doctor backend ok", "sessions", len(sessions))

			settings, err := client.GetSettings(ctx)
			if err != nil {
				logger.Warn("doctor settings check failed", "err", err)
			} else {
				logger.Info("doctor settings ok", "provider", settings.Provider, "model", settings.Model)
			}

			if checkDesktop {
				status, err := client.DesktopStatus(ctx)
				if err != nil {
					logger.Warn("doctor desktop probe failed", "err", err)
				} else {
					logger.Info("doctor desktop bridge", "running", status.Running, "bridge_url", cfg.Preview.DesktopBridgeURL)
				}
			}

			logger.Info("doctor complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout for backend checks")
	cmd.Flags().BoolVar(&checkDesktop, "desktop", false, "probe the remote-desktop bridge")
	return cmd
}
