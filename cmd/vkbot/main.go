// Package main contains the entrypoint of vkbot: it bootstraps one VK bot,
// reusing a stored access token or obtaining a new one.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	envPath    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop() // Ensure context cancellation is signaled before exit
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "vkbot",
		Short:         "Bootstrap a VK bot with a cached or freshly authorized access token",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return reportError(cmd, runBootstrap(cmd.Context(), flags, false))
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "./config.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&flags.envPath, "env-file", ".env", "Path to dotenv file")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Initialize the bot and keep running until interrupted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return reportError(cmd, runBootstrap(cmd.Context(), flags, false))
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Initialize the bot once, storing a new token if needed, and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return reportError(cmd, runBootstrap(cmd.Context(), flags, true))
			},
		},
		newTokensCmd(flags),
	)

	return root
}

func reportError(cmd *cobra.Command, err error) error {
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return err
}
