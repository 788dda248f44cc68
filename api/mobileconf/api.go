package mobileconf

import "context"

type Api interface {
	GetList(ctx context.Context) (*GetListResponse, error)
	Accept(ctx context.Context, id, nonce string) (*OperationResponse, error)
	Decline(ctx context.Context, id, nonce string) (*OperationResponse, error)
	ConfirmTradeOffer(ctx context.Context, offerId uint64) error
}
