package cmd

import (
	"log/slog"
	"time"

	"postrelay/internal/ai"
	"postrelay/internal/config"
	"postrelay/internal/delivery"
	"postrelay/internal/runner"
	"postrelay/internal/telegram"
	"postrelay/internal/watermark"
	"postrelay/internal/xapi"
)

// buildRunner wires a Runner from configuration. Shared by the run and serve
// commands so both execute the exact same cycle.
func buildRunner(cfg config.Config) (*runner.Runner, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	store, closeStore, err := watermark.Open(cfg.Watermark, cfg.Redis, cfg.Source.Account)
	if err != nil {
		return nil, nil, err
	}

	poster, err := telegram.New(telegram.Config{
		Token:    cfg.Telegram.Token,
		ChatID:   cfg.Telegram.ChatID,
		ThreadID: cfg.Telegram.ThreadID,
	})
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	var summarizer ai.Summarizer
	if cfg.OpenAI.APIKey != "" {
		summarizer = ai.NewOpenAI(ai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	}

	// Durations were validated with the config.
	pace, _ := time.ParseDuration(cfg.Delivery.Pace)
	budget, _ := time.ParseDuration(cfg.Poll.RunBudget)

	formatter := telegram.NewFormatter(cfg.Telegram.Format, cfg.Telegram.DisablePreview)
	pipe := delivery.New(poster, formatter, summarizer, pace, cfg.Delivery.TextLimit)

	r := &runner.Runner{
		Source:     xapi.NewClient(cfg.Source.BaseURL, cfg.Source.BearerToken),
		Store:      store,
		Pipeline:   pipe,
		Notifier:   poster,
		Account:    cfg.Source.Account,
		MaxResults: cfg.Source.MaxResults,
		Budget:     budget,
		Log:        slog.Default(),
	}
	return r, closeStore, nil
}
