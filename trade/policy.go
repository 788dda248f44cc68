package trade

import (
	"sort"

	"github.com/samber/lo"

	"github.com/escrow-tf/giftbot/steamid"
)

const UnknownGame = "Unknown Game"

// Policy decides what happens to an incoming offer. It is built once at
// startup and never mutated, so it is safe to share between offer workers.
type Policy struct {
	admin     steamid.SteamID
	gameNames map[uint32]string
}

// NewPolicy copies games, a game name to app id allow-list. A zero admin id
// disables the administrator rule.
func NewPolicy(admin steamid.SteamID, games map[string]uint32) Policy {
	names := lo.Keys(games)
	sort.Strings(names)

	gameNames := make(map[uint32]string, len(games))
	for _, name := range names {
		if _, exists := gameNames[games[name]]; !exists {
			gameNames[games[name]] = name
		}
	}

	return Policy{
		admin:     admin,
		gameNames: gameNames,
	}
}

func (p Policy) Admin() steamid.SteamID {
	return p.admin
}

// TrustsAdmin is the administrator trust rule: offers from the configured
// admin account are accepted whatever they contain, including offers that
// take items away from the bot. Everyone able to act as that account
// controls the bot's inventory.
func (p Policy) TrustsAdmin(partner steamid.SteamID) bool {
	return !p.admin.IsZero() && partner == p.admin
}

func (p Policy) AcceptsGame(appID uint32) bool {
	_, ok := p.gameNames[appID]
	return ok
}

// GameName resolves appID against the allow-list.
func (p Policy) GameName(appID uint32) string {
	if name, ok := p.gameNames[appID]; ok {
		return name
	}
	return UnknownGame
}

func (p Policy) Classify(offer Offer) Decision {
	if p.TrustsAdmin(offer.Partner) {
		return AcceptAsAdmin
	}

	if !offer.IsGift() {
		return DeclineNotGift
	}

	supported := lo.EveryBy(offer.ItemsToReceive, func(item Item) bool {
		return p.AcceptsGame(item.AppID)
	})
	if !supported {
		return DeclineUnsupportedGame
	}

	return AcceptAsGift
}
