package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/edgard/vkbot/internal/logger"
	"github.com/edgard/vkbot/internal/tokenstore"
)

func newTokensCmd(flags *rootFlags) *cobra.Command {
	tokens := &cobra.Command{
		Use:   "tokens",
		Short: "Inspect or edit the token store",
	}

	tokens.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List bot ids with masked tokens",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := openStore(flags)
				if err != nil {
					return reportError(cmd, err)
				}
				defer store.Close()

				all, err := store.All(cmd.Context())
				if err != nil {
					return reportError(cmd, err)
				}

				ids := make([]string, 0, len(all))
				for id := range all {
					ids = append(ids, id)
				}
				slices.Sort(ids)
				for _, id := range ids {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, logger.MaskToken(all[id]))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "forget <bot-id>",
			Short: "Remove the stored token of a bot so the next start authorizes again",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := openStore(flags)
				if err != nil {
					return reportError(cmd, err)
				}
				defer store.Close()

				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return reportError(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "forgot token of bot %s\n", args[0])
				return nil
			},
		},
	)

	return tokens
}

func openStore(flags *rootFlags) (tokenstore.Store, error) {
	cfg, log, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return tokenstore.Open(cfg.TokenStore, log)
}
