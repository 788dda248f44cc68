package econ

import (
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/escrow-tf/giftbot/api/community"
	"github.com/escrow-tf/giftbot/steamid"
	"github.com/escrow-tf/giftbot/trade"
)

// PendingOffers returns the received offers that are still active and were
// sent by someone else, joined with their item descriptions.
func (r *GetTradeOffersResponse) PendingOffers() []trade.Offer {
	descriptions := lo.SliceToMap(
		lo.Compact(r.Descriptions),
		func(description *community.Description) (string, *community.Description) {
			return description.Key(), description
		},
	)

	pending := lo.Filter(r.Received, func(offer *TradeOffer, _ int) bool {
		return offer != nil && offer.State == ActiveOfferState && !offer.IsOurOffer
	})

	return lo.Map(pending, func(offer *TradeOffer, _ int) trade.Offer {
		return ToOffer(offer, descriptions)
	})
}

func ToOffer(offer *TradeOffer, descriptions map[string]*community.Description) trade.Offer {
	return trade.Offer{
		ID:             offer.TradeOfferId,
		Partner:        steamid.FromAccountID(offer.OtherAccountId),
		Message:        offer.Message,
		ItemsToGive:    toItems(offer.ToGive, descriptions),
		ItemsToReceive: toItems(offer.ToReceive, descriptions),
		CreatedAt:      unixTime(offer.TimeCreated),
		ExpiresAt:      unixTime(offer.ExpirationTime),
	}
}

func toItems(assets []*community.Asset, descriptions map[string]*community.Description) []trade.Item {
	return lo.Map(lo.Compact(assets), func(asset *community.Asset, _ int) trade.Item {
		item := trade.Item{
			AppID:      asset.AppId,
			ContextID:  asset.ContextId,
			AssetID:    asset.AssetId,
			ClassID:    asset.ClassId,
			InstanceID: asset.InstanceId,
			Amount:     1,
		}

		if amount, err := strconv.ParseUint(asset.Amount, 10, 64); err == nil && amount > 0 {
			item.Amount = amount
		}

		if description, ok := descriptions[asset.DescriptionKey()]; ok {
			item.Name = description.Name
			item.MarketHashName = description.MarketHashName
			item.IconURL = description.IconUrl
		}

		return item
	})
}

func unixTime(seconds int64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0)
}
