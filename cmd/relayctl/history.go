package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gptyar/telegram-relay/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or reset stored conversations",
	}

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryResetCmd())
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Print a chat's stored conversation log as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChatID(args[0])
			if err != nil {
				return err
			}
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sessions, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer sessions.Close()

			messages, err := sessions.Get(cmd.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(cmd.ErrOrStderr(), "no conversation stored for %s\n", id)
				return nil
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(messages)
		},
	}
}

func newHistoryResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <chat-id>",
		Short: "Delete a chat's stored conversation log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChatID(args[0])
			if err != nil {
				return err
			}
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sessions, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer sessions.Close()

			if err := sessions.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", id)
			return nil
		},
	}
}
