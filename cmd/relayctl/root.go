package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gptyar/telegram-relay/internal/config"
	"github.com/gptyar/telegram-relay/internal/model"
	_ "github.com/gptyar/telegram-relay/internal/nats"
	"github.com/gptyar/telegram-relay/internal/store"
	_ "github.com/gptyar/telegram-relay/internal/store/bolt"
	_ "github.com/gptyar/telegram-relay/internal/store/sqlite"
	"github.com/gptyar/telegram-relay/pkg/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "relayctl",
		Short:        "Operate the Telegram relay",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	cmd.PersistentFlags().String("log-level", "error", "Log level.")

	cmd.AddCommand(newSetWebhookCmd())
	cmd.AddCommand(newHistoryCmd())
	return cmd
}

// loadConfig reads configuration without validating the parts a command
// does not use.
func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Read(path)
	if err != nil {
		return nil, nil, err
	}

	level, _ := cmd.Flags().GetString("log-level")
	log, err := logger.New(level)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Backend, error) {
	b, err := store.Open(ctx, cfg.StoreBackend, cfg.StoreOptions(log))
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	return b, nil
}

func parseChatID(arg string) (model.ConversationID, error) {
	chatID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || chatID == 0 {
		return "", fmt.Errorf("invalid chat id %q", arg)
	}
	return model.ChatConversationID(chatID), nil
}
