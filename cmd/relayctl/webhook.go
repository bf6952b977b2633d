package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gptyar/telegram-relay/internal/service"
	"github.com/gptyar/telegram-relay/internal/telegram"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
)

func newSetWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-webhook",
		Short: "Point the bot's webhook at the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			target, _ := cmd.Flags().GetString("url")
			if target == "" {
				target = cfg.PublicURL
			}
			if target == "" {
				return fmt.Errorf("--url or PUBLIC_URL is required")
			}

			tg := telegram.NewClient(cfg.TelegramAPIBase, cfg.TelegramBotToken, cfg.TelegramTimeout)
			svc := service.NewWebhookService(tg, service.WebhookConfig{
				BotToken: cfg.TelegramBotToken,
				Secret:   cfg.TelegramWebhookSecret,
			}, log)

			resp, err := svc.Register(cmd.Context(), target)
			if relayerr.HasCode(err, relayerr.CodeWebhookRejected) {
				raw, _ := json.Marshal(resp)
				return fmt.Errorf("failed: %s", raw)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Webhook set successfully: %s\n", target)
			return nil
		},
	}

	cmd.Flags().String("url", "", "Public URL of the relay (defaults to PUBLIC_URL).")
	return cmd
}
