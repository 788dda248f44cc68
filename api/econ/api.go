package econ

import "context"

type Api interface {
	GetTradeOffers(ctx context.Context, options GetTradeOffersOptions) (*GetTradeOffersResponse, error)
}
