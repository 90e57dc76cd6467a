// Package runner ties one polling cycle together: fetch, diff, deliver,
// persist, and report a structured outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"postrelay/internal/diff"
	"postrelay/internal/model"
	"postrelay/internal/telegram"
	"postrelay/internal/watermark"
	"postrelay/internal/xapi"
)

// SourceClient is the fetch boundary.
type SourceClient interface {
	FetchLatest(ctx context.Context, handle string, maxResults int) (model.FetchResult, error)
}

// Deliverer is the delivery pipeline boundary.
type Deliverer interface {
	DeliverAll(ctx context.Context, posts []model.Post, author model.Author, fetched model.FetchResult) int
}

// Runner executes one cycle per Run call. A cycle is strictly sequential:
// fetch, diff, deliver, persist. Overlap protection between cycles belongs
// to the caller.
type Runner struct {
	Source     SourceClient
	Store      watermark.Store
	Pipeline   Deliverer
	Notifier   telegram.Poster // best-effort error reporting to the chat
	Account    string
	MaxResults int
	Budget     time.Duration // wall-clock budget for the whole run; 0 = none
	Log        *slog.Logger
}

// Run executes one cycle. The returned outcome always carries a terminal
// status; err is non-nil only for outcomes with status "error", so the
// caller's retry policy can act on it.
func (r *Runner) Run(ctx context.Context) (model.RunOutcome, error) {
	if err := r.validate(); err != nil {
		return model.RunOutcome{Status: model.RunError, Message: err.Error()}, err
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	if r.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Budget)
		defer cancel()
	}

	fetched, err := r.Source.FetchLatest(ctx, r.Account, r.MaxResults)
	if err != nil {
		if errors.Is(err, xapi.ErrRateLimited) {
			// Expected condition: the next scheduled cycle retries
			// naturally, so no error notification goes out.
			log.Info("run: source rate limited, ending cleanly", "account", r.Account)
			return model.RunOutcome{
				Status:  model.RunRateLimited,
				Message: "source rate limited; will retry on next cycle",
			}, nil
		}
		log.Error("run: fetch failed", "account", r.Account, "err", err)
		r.reportError(ctx, fmt.Sprintf("postrelay: fetching posts for @%s failed: %v", r.Account, err))
		return model.RunOutcome{
			Status:  model.RunError,
			Message: fmt.Sprintf("fetch failed: %v", err),
		}, err
	}

	mark, ok, err := r.Store.Read(ctx)
	if err != nil {
		// Availability over strictness: scan the whole window as new
		// rather than failing the run on storage trouble.
		log.Warn("run: watermark read failed, treating as absent", "err", err)
		mark, ok = "", false
	}
	if !ok {
		mark = ""
	}

	newPosts := diff.ComputeNew(fetched.Posts, mark)
	if len(newPosts) == 0 {
		log.Info("run: nothing new", "account", r.Account, "fetched", len(fetched.Posts))
		return model.RunOutcome{Status: model.RunOK, Message: "no new posts"}, nil
	}

	author, found := fetched.AuthorByID(newPosts[0].AuthorID)
	if !found {
		author = model.Author{ID: newPosts[0].AuthorID, Handle: r.Account}
	}

	delivered := r.Pipeline.DeliverAll(ctx, newPosts, author, fetched)

	newestID := fetched.Posts[0].ID
	if delivered > 0 {
		// The watermark jumps to the newest fetched id even when some
		// items in the batch bounced: one bad message must not cause the
		// whole batch to be re-delivered next cycle.
		if err := r.Store.Write(ctx, newestID); err != nil {
			log.Error("run: watermark write failed; duplicates possible next cycle", "id", newestID, "err", err)
		}
	}

	if ctx.Err() != nil && delivered < len(newPosts) {
		// Budget ran out mid-batch. Delivered items are persisted above so
		// they are not re-sent; the overrun itself is a run failure.
		err := fmt.Errorf("run budget exceeded after %d of %d deliveries: %w", delivered, len(newPosts), ctx.Err())
		log.Error("run: budget exceeded", "err", err)
		out := model.RunOutcome{Status: model.RunError, Message: err.Error(), ItemsProcessed: delivered}
		if delivered > 0 {
			out.NewestItemID = newestID
		}
		return out, err
	}

	out := model.RunOutcome{
		Status:         model.RunOK,
		Message:        fmt.Sprintf("delivered %d of %d new posts", delivered, len(newPosts)),
		ItemsProcessed: delivered,
	}
	if delivered > 0 {
		out.NewestItemID = newestID
	}
	log.Info("run: done", "account", r.Account, "new", len(newPosts), "delivered", delivered)
	return out, nil
}

func (r *Runner) validate() error {
	switch {
	case r.Source == nil:
		return errors.New("runner: source client is required")
	case r.Store == nil:
		return errors.New("runner: watermark store is required")
	case r.Pipeline == nil:
		return errors.New("runner: delivery pipeline is required")
	case r.Account == "":
		return errors.New("runner: account handle is required")
	}
	return nil
}

// reportError sends a best-effort notification to the destination chat. It
// runs on a short detached deadline so a dead run context cannot block it,
// and its own failure is only logged.
func (r *Runner) reportError(ctx context.Context, text string) {
	if r.Notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := r.Notifier.PostMessage(nctx, telegram.Message{Text: text, DisablePreview: true}); err != nil {
		log := r.Log
		if log == nil {
			log = slog.Default()
		}
		log.Warn("run: error notification failed", "err", err)
	}
}
