// Package delivery sends new posts to the destination chat, oldest first,
// isolating per-item failures so one bounced message never aborts the batch.
package delivery

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"postrelay/internal/ai"
	"postrelay/internal/model"
	"postrelay/internal/telegram"
)

// Pipeline delivers one batch per run. Not safe for concurrent batches; runs
// are sequential by design so chat ordering matches publication ordering.
type Pipeline struct {
	poster     telegram.Poster
	formatter  telegram.Formatter
	summarizer ai.Summarizer // optional
	limiter    *rate.Limiter
	textLimit  int
	log        *slog.Logger
}

// New creates a pipeline. pace is the minimum delay between consecutive
// sends; burst 1 means the first message of a batch goes out immediately.
func New(poster telegram.Poster, formatter telegram.Formatter, summarizer ai.Summarizer, pace time.Duration, textLimit int) *Pipeline {
	if pace <= 0 {
		pace = time.Second
	}
	if textLimit <= 0 {
		textLimit = 3500
	}
	return &Pipeline{
		poster:     poster,
		formatter:  formatter,
		summarizer: summarizer,
		limiter:    rate.NewLimiter(rate.Every(pace), 1),
		textLimit:  textLimit,
		log:        slog.Default(),
	}
}

// DeliverAll posts each item in order and returns how many were confirmed
// delivered. A failed item is recorded and skipped; the rest of the batch
// still goes out. Context cancellation stops the batch, since every later
// send would fail the same way.
func (p *Pipeline) DeliverAll(ctx context.Context, posts []model.Post, author model.Author, fetched model.FetchResult) int {
	delivered := 0
	for _, post := range posts {
		if err := p.limiter.Wait(ctx); err != nil {
			p.log.Warn("delivery: pacing interrupted, stopping batch", "delivered", delivered, "err", err)
			return delivered
		}
		post.Text = p.fitText(ctx, post.Text)
		msg := p.formatter.Format(post, author, resolveMedia(post, fetched))
		if err := p.poster.PostMessage(ctx, msg); err != nil {
			p.log.Warn("delivery: send failed, skipping item", "id", post.ID, "err", err)
			if ctx.Err() != nil {
				return delivered
			}
			continue
		}
		delivered++
		p.log.Info("delivery: sent", "id", post.ID, "created_at", post.CreatedAt)
	}
	return delivered
}

// fitText squeezes over-long text into the destination budget, preferring
// the summarizer when one is configured and falling back to truncation.
func (p *Pipeline) fitText(ctx context.Context, text string) string {
	if len([]rune(text)) <= p.textLimit {
		return text
	}
	if p.summarizer != nil {
		condensed, err := p.summarizer.Condense(ctx, text, p.textLimit)
		if err == nil && condensed != "" && len([]rune(condensed)) <= p.textLimit {
			return condensed
		}
		p.log.Warn("delivery: condense failed, truncating", "err", err)
	}
	return truncate(text, p.textLimit)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func resolveMedia(post model.Post, fetched model.FetchResult) []model.Media {
	if len(post.MediaKeys) == 0 {
		return nil
	}
	out := make([]model.Media, 0, len(post.MediaKeys))
	for _, key := range post.MediaKeys {
		if m, ok := fetched.MediaByKey(key); ok {
			out = append(out, m)
		}
	}
	return out
}
