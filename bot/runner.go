package bot

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/escrow-tf/giftbot/logx"
	"github.com/escrow-tf/giftbot/trade"
)

const DefaultWorkers = 8

type Handler interface {
	Handle(ctx context.Context, offer trade.Offer) Outcome
}

// Runner handles offers concurrently, at most workers at a time.
type Runner struct {
	handler Handler
	workers int
}

func NewRunner(handler Handler, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{handler: handler, workers: workers}
}

// Run handles offers until the channel is closed or ctx is cancelled, then
// waits for offers already in flight. In-flight offers are not cancelled
// with ctx so an accepted trade still gets its notification.
func (r *Runner) Run(ctx context.Context, offers <-chan trade.Offer) error {
	var g errgroup.Group
	g.SetLimit(r.workers)

	taskCtx := context.WithoutCancel(ctx)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case offer, ok := <-offers:
			if !ok {
				break loop
			}
			g.Go(func() error {
				r.handle(taskCtx, offer)
				return nil
			})
		}
	}

	return g.Wait()
}

func (r *Runner) handle(ctx context.Context, offer trade.Offer) {
	defer func() {
		if rec := recover(); rec != nil {
			logx.FromContext(ctx).ErrorContext(ctx, "offer handler panicked",
				slog.Uint64(logx.FieldOfferID, offer.ID),
				slog.String(logx.FieldError, fmt.Sprint(rec)),
			)
		}
	}()

	r.handler.Handle(ctx, offer)
}
