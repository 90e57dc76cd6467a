package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"postrelay/internal/runner"
	"postrelay/internal/xapi"
)

// Poller triggers one polling cycle per schedule tick. It owns the retry
// policy the orchestrator deliberately delegates outward: transient failures
// get a bounded number of whole-run retries with exponential backoff;
// rate-limited and clean runs are never retried.
type Poller struct {
	Runner    *runner.Runner
	Schedule  string // cron spec or "@every 30m"
	RetryMax  int
	RetryBase time.Duration
	Log       *slog.Logger

	// running guards against overlapping cycles if a tick fires while the
	// previous run is still in flight. Cadence is expected to be much
	// longer than a run, so a skipped tick is logged, not queued.
	running atomic.Bool
}

func (p *Poller) Start(ctx context.Context) error {
	if p.RetryBase <= 0 {
		p.RetryBase = 5 * time.Second
	}
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	c := cron.New()
	if _, err := c.AddFunc(p.Schedule, func() { p.trigger(ctx, log) }); err != nil {
		return err
	}

	// Initial cycle right away, then on schedule.
	p.trigger(ctx, log)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (p *Poller) trigger(ctx context.Context, log *slog.Logger) {
	if !p.running.CompareAndSwap(false, true) {
		log.Warn("poller: previous run still in flight, skipping tick")
		return
	}
	defer p.running.Store(false)

	delay := p.RetryBase
	for attempt := 0; ; attempt++ {
		out, err := p.Runner.Run(ctx)
		log.Info("poller: run finished",
			"status", out.Status,
			"items", out.ItemsProcessed,
			"newest", out.NewestItemID,
			"message", out.Message,
			"attempt", attempt+1)
		if err == nil || attempt >= p.RetryMax || !transient(err) {
			return
		}
		log.Warn("poller: transient failure, retrying", "in", delay, "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// transient reports whether a failed run is worth retrying within this tick.
// Configuration and authorization failures need an operator, not a retry.
func transient(err error) bool {
	var ne *xapi.NetworkError
	return errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded)
}
