package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"postrelay/internal/telegram"

	"github.com/spf13/cobra"
)

// sendCmd posts a manual message to the configured chat. Useful as an
// operator smoke test for the token and chat id.
var sendCmd = &cobra.Command{
	Use:   "send <text>...",
	Short: "Send a test message to the destination chat",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires message text")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram config missing: set telegram.token and telegram.chat_id in config.yaml")
		}
		cli, err := telegram.New(telegram.Config{
			Token:    cfg.Telegram.Token,
			ChatID:   cfg.Telegram.ChatID,
			ThreadID: cfg.Telegram.ThreadID,
		})
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		text := strings.Join(args, " ")
		if err := cli.PostMessage(ctx, telegram.Message{Text: text, DisablePreview: true}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent message to chat %d\n", cfg.Telegram.ChatID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
