package market

import "context"

type Api interface {
	PriceOverview(ctx context.Context, appID uint32, marketHashName string) (*PriceOverviewResponse, error)
}
