package trade

import (
	"strconv"
	"time"

	"github.com/escrow-tf/giftbot/steamid"
)

// Offer is an incoming trade offer as seen from the bot's side: ItemsToGive
// leave the bot's inventory, ItemsToReceive come from the partner.
type Offer struct {
	ID             uint64
	Partner        steamid.SteamID
	Message        string
	ItemsToGive    []Item
	ItemsToReceive []Item
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Item is one economy asset together with the description fields needed for
// valuation and display.
type Item struct {
	AppID          uint32
	ContextID      string
	AssetID        string
	ClassID        string
	InstanceID     string
	Amount         uint64
	Name           string
	MarketHashName string
	IconURL        string
}

// IsGift reports whether the partner gives at least one item and asks for nothing.
func (o Offer) IsGift() bool {
	return len(o.ItemsToGive) == 0 && len(o.ItemsToReceive) > 0
}

func (o Offer) IDString() string {
	return strconv.FormatUint(o.ID, 10)
}
