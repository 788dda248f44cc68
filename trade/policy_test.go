package trade_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrow-tf/giftbot/steamid"
	"github.com/escrow-tf/giftbot/trade"
)

var (
	adminID = steamid.FromAccountID(1001)
	userID  = steamid.FromAccountID(123)
)

func testPolicy() trade.Policy {
	return trade.NewPolicy(adminID, map[string]uint32{
		"CSGO":  730,
		"DOTA2": 570,
		"RUST":  252490,
	})
}

func item(appID uint32) trade.Item {
	return trade.Item{AppID: appID, Name: "item", MarketHashName: "item"}
}

func TestClassifyScenarios(t *testing.T) {
	policy := testPolicy()

	testCases := []struct {
		name     string
		offer    trade.Offer
		expected trade.Decision
	}{
		{
			name: "admin gift",
			offer: trade.Offer{
				ID:             1,
				Partner:        adminID,
				ItemsToReceive: []trade.Item{item(730)},
			},
			expected: trade.AcceptAsAdmin,
		},
		{
			name: "user asks for items",
			offer: trade.Offer{
				ID:             2,
				Partner:        userID,
				ItemsToGive:    []trade.Item{item(730)},
				ItemsToReceive: []trade.Item{item(730)},
			},
			expected: trade.DeclineNotGift,
		},
		{
			name: "user gifts unsupported game",
			offer: trade.Offer{
				ID:             3,
				Partner:        userID,
				ItemsToReceive: []trade.Item{item(9999)},
			},
			expected: trade.DeclineUnsupportedGame,
		},
		{
			name: "user gifts supported game",
			offer: trade.Offer{
				ID:             4,
				Partner:        userID,
				ItemsToReceive: []trade.Item{item(730)},
			},
			expected: trade.AcceptAsGift,
		},
		{
			name: "user gifts mixed games",
			offer: trade.Offer{
				ID:             5,
				Partner:        userID,
				ItemsToReceive: []trade.Item{item(570), item(9999)},
			},
			expected: trade.DeclineUnsupportedGame,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, policy.Classify(tc.offer))
		})
	}
}

func TestAdminIsTrustedRegardlessOfItems(t *testing.T) {
	rq := require.New(t)
	policy := testPolicy()

	offers := []trade.Offer{
		{Partner: adminID},
		{Partner: adminID, ItemsToGive: []trade.Item{item(730)}},
		{Partner: adminID, ItemsToGive: []trade.Item{item(440)}, ItemsToReceive: []trade.Item{item(9999)}},
		{Partner: adminID, ItemsToReceive: []trade.Item{item(9999)}},
	}

	for _, offer := range offers {
		rq.Equal(trade.AcceptAsAdmin, policy.Classify(offer))
	}
}

func TestAdminRuleDisabledWithoutAdmin(t *testing.T) {
	rq := require.New(t)
	policy := trade.NewPolicy(steamid.SteamID{}, map[string]uint32{"CSGO": 730})

	rq.False(policy.TrustsAdmin(steamid.SteamID{}))
	rq.Equal(trade.DeclineNotGift, policy.Classify(trade.Offer{}))
	rq.Equal(trade.AcceptAsGift, policy.Classify(trade.Offer{ItemsToReceive: []trade.Item{item(730)}}))
}

func TestNonGiftIsDeclined(t *testing.T) {
	rq := require.New(t)
	policy := testPolicy()

	// anything given away by the bot
	rq.Equal(trade.DeclineNotGift, policy.Classify(trade.Offer{
		Partner:     userID,
		ItemsToGive: []trade.Item{item(730)},
	}))
	rq.Equal(trade.DeclineNotGift, policy.Classify(trade.Offer{
		Partner:        userID,
		ItemsToGive:    []trade.Item{item(9999)},
		ItemsToReceive: []trade.Item{item(9999)},
	}))

	// nothing received
	rq.Equal(trade.DeclineNotGift, policy.Classify(trade.Offer{Partner: userID}))
}

func TestUnsupportedGames(t *testing.T) {
	rq := require.New(t)
	policy := testPolicy()

	for _, appID := range []uint32{0, 440, 753, 9999} {
		rq.Equal(trade.DeclineUnsupportedGame, policy.Classify(trade.Offer{
			Partner:        userID,
			ItemsToReceive: []trade.Item{item(appID), item(appID)},
		}))
	}
}

func TestAcceptAsGiftInvariant(t *testing.T) {
	rq := require.New(t)
	policy := testPolicy()

	offer := trade.Offer{
		Partner:        userID,
		ItemsToReceive: []trade.Item{item(730), item(570), item(252490)},
	}

	rq.Equal(trade.AcceptAsGift, policy.Classify(offer))
	rq.Empty(offer.ItemsToGive)
	for _, received := range offer.ItemsToReceive {
		rq.True(policy.AcceptsGame(received.AppID))
	}
}

func TestGameName(t *testing.T) {
	rq := require.New(t)
	policy := testPolicy()

	rq.Equal("CSGO", policy.GameName(730))
	rq.Equal("DOTA2", policy.GameName(570))
	rq.Equal("RUST", policy.GameName(252490))
	rq.Equal(trade.UnknownGame, policy.GameName(9999))
}

func TestPolicyCopiesAllowList(t *testing.T) {
	rq := require.New(t)

	games := map[string]uint32{"CSGO": 730}
	policy := trade.NewPolicy(adminID, games)
	games["TF2"] = 440

	rq.False(policy.AcceptsGame(440))
}

func TestDecision(t *testing.T) {
	rq := require.New(t)

	rq.True(trade.AcceptAsAdmin.Accepts())
	rq.True(trade.AcceptAsGift.Accepts())
	rq.False(trade.DeclineNotGift.Accepts())
	rq.False(trade.DeclineUnsupportedGame.Accepts())
	rq.Equal("accept-gift", trade.AcceptAsGift.String())
	rq.Equal("decline-unsupported-game", trade.DeclineUnsupportedGame.String())
}
