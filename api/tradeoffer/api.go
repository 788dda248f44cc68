package tradeoffer

import (
	"context"

	"github.com/escrow-tf/giftbot/steamid"
)

type Api interface {
	Accept(ctx context.Context, id uint64, partner steamid.SteamID) (*AcceptResponse, error)
	Decline(ctx context.Context, id uint64) (*ActionResponse, error)
}
