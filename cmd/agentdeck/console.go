package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/agentdeck"
	"pkt.systems/agentdeck/console"
	"pkt.systems/agentdeck/internal/appconfig"
	"pkt.systems/agentdeck/schema"
	"pkt.systems/pslog"
)

func newConsoleCmd() *cobra.Command {
	var cfgPath string
	var themeName string
	var clientID string
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the interactive agent console",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if themeName != "" {
				cfg.Console.Theme = themeName
			}

			client, err := agentdeck.NewClient(agentdeck.ClientConfig{
				Config:   cfg,
				ClientID: schema.ClientID(clientID),
			}, agentdeck.ClientDeps{Logger: logger})
			if err != nil {
				return err
			}

			mirror := console.NewMirror(console.MirrorOptions{
				MaxScrollback: cfg.Limits.TranscriptMaxLines,
				MaxSandbox:    cfg.Limits.SandboxMaxLines,
			})
			app, err := console.NewApp(console.AppOptions{
				Controller:      client.Service(),
				Mirror:          mirror,
				Theme:           cfg.Console.Theme,
				CompactWidth:    cfg.Console.CompactWidth,
				PanelCloseDelay: cfg.Timeouts.PanelCloseDelay(),
				Input:           os.Stdin,
				Output:          os.Stdout,
				Size: func() (int, int, error) {
					return term.GetSize(int(os.Stdout.Fd()))
				},
				Logger: logger,
			})
			if err != nil {
				return err
			}
			mirrorEvents, unsubscribe := client.Bus().Subscribe()
			defer unsubscribe()
			go mirror.Run(cmd.Context(), mirrorEvents)
			mirror.SetNotify(app.RequestRedraw)

			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return fmt.Errorf("stdin is not a terminal")
			}
			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return fmt.Errorf("raw mode: %w", err)
			}
			defer func() { _ = term.Restore(fd, oldState) }()

			if err := client.Start(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&themeName, "theme", "", "override the configured theme")
	cmd.Flags().StringVar(&clientID, "client-id", "", "transport client id (random when empty)")
	return cmd
}
