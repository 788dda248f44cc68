package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api/econ"
	"github.com/escrow-tf/giftbot/logx"
	"github.com/escrow-tf/giftbot/trade"
)

const (
	DefaultPollInterval = 30 * time.Second

	// Steam expires unanswered offers after two weeks.
	defaultSeenTTL      = 15 * 24 * time.Hour
	seenCleanupInterval = time.Hour
)

// Poller emits every pending received offer exactly once.
type Poller struct {
	source   econ.Api
	interval time.Duration
	seen     *cache.Cache
	now      func() time.Time
}

func NewPoller(source econ.Api, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Poller{
		source:   source,
		interval: interval,
		seen:     cache.New(defaultSeenTTL, seenCleanupInterval),
		now:      time.Now,
	}
}

// Poll fetches pending offers and returns the ones not returned before.
func (p *Poller) Poll(ctx context.Context) ([]trade.Offer, error) {
	response, err := p.source.GetTradeOffers(ctx, econ.ActiveReceived())
	if err != nil {
		return nil, eris.Wrap(err, "error fetching trade offers")
	}

	var fresh []trade.Offer
	for _, offer := range response.PendingOffers() {
		if p.seen.Add(offer.IDString(), struct{}{}, p.seenTTL(offer)) != nil {
			continue
		}
		fresh = append(fresh, offer)
	}

	return fresh, nil
}

func (p *Poller) seenTTL(offer trade.Offer) time.Duration {
	if offer.ExpiresAt.IsZero() {
		return cache.DefaultExpiration
	}

	ttl := offer.ExpiresAt.Sub(p.now())
	if ttl <= 0 {
		return time.Minute
	}
	return ttl
}

// Run polls until ctx is cancelled, sending new offers to out. out is closed
// when Run returns.
func (p *Poller) Run(ctx context.Context, out chan<- trade.Offer) error {
	defer close(out)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		offers, err := p.Poll(ctx)
		if err != nil {
			logx.FromContext(ctx).ErrorContext(ctx, "error polling trade offers", logx.Error(err))
		} else if len(offers) > 0 {
			logx.FromContext(ctx).InfoContext(ctx, "found new trade offers", slog.Int("count", len(offers)))
		}

		for _, offer := range offers {
			select {
			case out <- offer:
			case <-ctx.Done():
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
