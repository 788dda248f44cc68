package pricing

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/escrow-tf/giftbot/api/market"
	"github.com/escrow-tf/giftbot/logx"
)

type Status int

const (
	Unavailable Status = iota
	NoData
	Available
)

const (
	UnavailableText = "Price unavailable"
	NoDataText      = "No price data"
)

const DefaultLookupTimeout = 10 * time.Second

var plainDecimal = regexp.MustCompile(`^\d+(\.\d+)?$`)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case NoData:
		return "no-data"
	default:
		return "unavailable"
	}
}

// Quote is the best-effort market price of a single item. Amount is only
// meaningful when Status is Available.
type Quote struct {
	Status Status
	Text   string
	Amount decimal.Decimal
}

func UnavailableQuote() Quote {
	return Quote{Status: Unavailable, Text: UnavailableText}
}

func NoDataQuote() Quote {
	return Quote{Status: NoData, Text: NoDataText}
}

// ParseQuote turns a market display price such as "$1,234.56" into a quote.
// Anything that is not a clean positive decimal is unavailable.
func ParseQuote(text string) Quote {
	amount, ok := ParsePrice(text)
	if !ok {
		return UnavailableQuote()
	}

	return Quote{Status: Available, Text: strings.TrimSpace(text), Amount: amount}
}

func ParsePrice(text string) (decimal.Decimal, bool) {
	digits := strings.TrimLeftFunc(strings.TrimSpace(text), func(r rune) bool {
		return r != '-' && !unicode.IsDigit(r)
	})
	digits = strings.ReplaceAll(digits, ",", "")

	if !plainDecimal.MatchString(digits) {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(digits)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}

	return amount, true
}

type Quoter interface {
	Quote(ctx context.Context, appID uint32, marketHashName string) Quote
}

// MarketQuoter asks the community market for the lowest listing price. Every
// failure, including the lookup timeout, degrades to an unavailable quote.
type MarketQuoter struct {
	market  market.Api
	timeout time.Duration
}

func NewMarketQuoter(marketApi market.Api, timeout time.Duration) *MarketQuoter {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	return &MarketQuoter{
		market:  marketApi,
		timeout: timeout,
	}
}

func (q *MarketQuoter) Quote(ctx context.Context, appID uint32, marketHashName string) Quote {
	logger := logx.FromContext(ctx).With(
		slog.Uint64(logx.FieldAppID, uint64(appID)),
		slog.String(logx.FieldMarketName, marketHashName),
	)

	if marketHashName == "" {
		logger.WarnContext(ctx, "item has no market name")
		return UnavailableQuote()
	}

	lookupCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	response, err := q.market.PriceOverview(lookupCtx, appID, marketHashName)
	if err != nil {
		logger.WarnContext(ctx, "price lookup failed", logx.Error(err))
		return UnavailableQuote()
	}

	if !response.Success {
		logger.WarnContext(ctx, "price lookup was not successful")
		return UnavailableQuote()
	}

	if response.LowestPrice == "" {
		return NoDataQuote()
	}

	quote := ParseQuote(response.LowestPrice)
	if quote.Status != Available {
		logger.WarnContext(ctx, "unparseable market price", slog.String("price", response.LowestPrice))
	}

	return quote
}
