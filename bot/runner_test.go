package bot

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/escrow-tf/giftbot/trade"
)

type countingHandler struct {
	mu       sync.Mutex
	handled  []uint64
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
	panicOn  uint64
}

func (c *countingHandler) Handle(_ context.Context, offer trade.Offer) Outcome {
	current := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		peak := c.peak.Load()
		if current <= peak || c.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	if offer.ID == c.panicOn {
		panic("boom")
	}

	time.Sleep(c.delay)

	c.mu.Lock()
	c.handled = append(c.handled, offer.ID)
	c.mu.Unlock()
	return Outcome{OfferID: offer.ID}
}

func TestRunnerHandlesEveryOffer(t *testing.T) {
	rq := require.New(t)

	handler := &countingHandler{delay: 5 * time.Millisecond, panicOn: 3}
	runner := NewRunner(handler, 2)

	offers := make(chan trade.Offer, 10)
	for id := uint64(1); id <= 10; id++ {
		offers <- trade.Offer{ID: id}
	}
	close(offers)

	rq.NoError(runner.Run(context.Background(), offers))
	rq.Len(handler.handled, 9)
	rq.NotContains(handler.handled, uint64(3))
	rq.LessOrEqual(handler.peak.Load(), int32(2))
}

func TestRunnerStopsOnCancel(t *testing.T) {
	rq := require.New(t)

	runner := NewRunner(&countingHandler{}, 0)
	rq.Equal(DefaultWorkers, runner.workers)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rq.NoError(runner.Run(ctx, make(chan trade.Offer)))
}
