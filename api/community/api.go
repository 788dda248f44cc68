package community

import (
	"context"

	"github.com/escrow-tf/giftbot/steamid"
)

type Api interface {
	PostComment(ctx context.Context, profile steamid.SteamID, comment string) error
}
