package pricing

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/escrow-tf/giftbot/trade"
)

const UnableToCalculate = "Unable to calculate total"

const defaultConcurrency = 8

type PricedItem struct {
	Item  trade.Item
	Quote Quote
}

type Valuator struct {
	quoter      Quoter
	concurrency int
}

func NewValuator(quoter Quoter) *Valuator {
	return &Valuator{
		quoter:      quoter,
		concurrency: defaultConcurrency,
	}
}

// WithConcurrency caps the number of lookups in flight for one offer.
func (v *Valuator) WithConcurrency(n int) *Valuator {
	if n > 0 {
		v.concurrency = n
	}
	return v
}

// PriceItems quotes every item concurrently. The result has the same order
// as items.
func (v *Valuator) PriceItems(ctx context.Context, items []trade.Item) []PricedItem {
	priced := make([]PricedItem, len(items))

	var group errgroup.Group
	group.SetLimit(v.concurrency)

	for i, item := range items {
		group.Go(func() error {
			priced[i] = PricedItem{
				Item:  item,
				Quote: v.quoter.Quote(ctx, item.AppID, item.MarketHashName),
			}
			return nil
		})
	}

	_ = group.Wait()

	return priced
}

func (v *Valuator) TotalValue(ctx context.Context, items []trade.Item) string {
	return Total(Quotes(v.PriceItems(ctx, items)))
}

func Quotes(priced []PricedItem) []Quote {
	return lo.Map(priced, func(p PricedItem, _ int) Quote {
		return p.Quote
	})
}

// Total sums every available quote. When none is available it returns
// UnableToCalculate: no data is not the same as a total of zero.
func Total(quotes []Quote) string {
	total := decimal.Zero
	contributed := false

	for _, quote := range quotes {
		if quote.Status != Available || !quote.Amount.IsPositive() {
			continue
		}

		total = total.Add(quote.Amount)
		contributed = true
	}

	if !contributed {
		return UnableToCalculate
	}

	return "$" + total.StringFixed(2)
}
