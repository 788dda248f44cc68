package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/escrow-tf/giftbot/api/market"
	"github.com/escrow-tf/giftbot/pricing"
)

type fakeMarket struct {
	response *market.PriceOverviewResponse
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeMarket) PriceOverview(ctx context.Context, _ uint32, _ string) (*market.PriceOverviewResponse, error) {
	f.calls++

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return f.response, f.err
}

func TestParsePrice(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		text     string
		expected string
		ok       bool
	}{
		{text: "$12.34", expected: "12.34", ok: true},
		{text: " $0.03 ", expected: "0.03", ok: true},
		{text: "$1,234.56", expected: "1234.56", ok: true},
		{text: "12", expected: "12", ok: true},
		{text: "$0.00", ok: false},
		{text: "-$1.00", ok: false},
		{text: "$1e5", ok: false},
		{text: "$", ok: false},
		{text: "", ok: false},
		{text: "Price unavailable", ok: false},
		{text: "$12.34 USD", ok: false},
	}

	for _, tc := range testCases {
		amount, ok := pricing.ParsePrice(tc.text)
		rq.Equal(tc.ok, ok, tc.text)
		if tc.ok {
			rq.Equal(tc.expected, amount.String(), tc.text)
		}
	}
}

func TestMarketQuoter(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	available := pricing.NewMarketQuoter(&fakeMarket{
		response: &market.PriceOverviewResponse{Success: true, LowestPrice: "$2.50"},
	}, time.Second)
	quote := available.Quote(ctx, 730, "Case Key")
	rq.Equal(pricing.Available, quote.Status)
	rq.Equal("$2.50", quote.Text)
	rq.Equal("2.5", quote.Amount.String())

	noData := pricing.NewMarketQuoter(&fakeMarket{
		response: &market.PriceOverviewResponse{Success: true},
	}, time.Second)
	rq.Equal(pricing.NoDataQuote(), noData.Quote(ctx, 730, "Case Key"))

	failed := pricing.NewMarketQuoter(&fakeMarket{err: errors.New("boom")}, time.Second)
	rq.Equal(pricing.UnavailableQuote(), failed.Quote(ctx, 730, "Case Key"))

	unsuccessful := pricing.NewMarketQuoter(&fakeMarket{
		response: &market.PriceOverviewResponse{Success: false},
	}, time.Second)
	rq.Equal(pricing.UnavailableQuote(), unsuccessful.Quote(ctx, 730, "Case Key"))

	garbage := pricing.NewMarketQuoter(&fakeMarket{
		response: &market.PriceOverviewResponse{Success: true, LowestPrice: "soon"},
	}, time.Second)
	rq.Equal(pricing.UnavailableQuote(), garbage.Quote(ctx, 730, "Case Key"))
}

func TestMarketQuoterSkipsNamelessItems(t *testing.T) {
	rq := require.New(t)

	fake := &fakeMarket{response: &market.PriceOverviewResponse{Success: true, LowestPrice: "$1.00"}}
	quote := pricing.NewMarketQuoter(fake, time.Second).Quote(context.Background(), 730, "")

	rq.Equal(pricing.UnavailableQuote(), quote)
	rq.Zero(fake.calls)
}

func TestMarketQuoterTimeout(t *testing.T) {
	rq := require.New(t)

	fake := &fakeMarket{
		response: &market.PriceOverviewResponse{Success: true, LowestPrice: "$1.00"},
		delay:    time.Second,
	}

	start := time.Now()
	quote := pricing.NewMarketQuoter(fake, 20*time.Millisecond).Quote(context.Background(), 730, "Case Key")

	rq.Equal(pricing.UnavailableQuote(), quote)
	rq.Less(time.Since(start), 500*time.Millisecond)
}
