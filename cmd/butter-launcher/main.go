// Package main implements the Butter Launcher auth CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Astinix/Butter-Launcher/pkg/auth"
	"github.com/Astinix/Butter-Launcher/pkg/config"
	"github.com/Astinix/Butter-Launcher/pkg/logger"
)

var (
	// Version is set at build time.
	version = "0.3.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "butter-launcher",
		Short: "Butter Launcher - premium and community auth for the game client",
		Long: `Butter Launcher manages the credential and session lifecycle for the
game client: premium OAuth login and refresh, profile resolution,
game-session negotiation, offline tokens for both issuers, and the
per-issuer signing-key caches.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolP("debug", "d", false, "Log full HTTP exchanges (Authorization redacted)")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newSessionCmd())
	cmd.AddCommand(newOfflineTokenCmd())
	cmd.AddCommand(newJwksCmd())

	return cmd
}

// newClient wires config, logging and the auth client for a command run.
func newClient(cmd *cobra.Command) *auth.Client {
	cfg := config.Load()
	debug, _ := cmd.Flags().GetBool("debug")
	log := logger.New(cfg.HTTPDebug || debug)
	return auth.New(cfg, log)
}
