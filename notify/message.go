package notify

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/escrow-tf/giftbot/api/discord"
	"github.com/escrow-tf/giftbot/pricing"
	"github.com/escrow-tf/giftbot/trade"
)

const (
	AdminTitle = "👑 Admin Trade Received!"
	GiftTitle  = "🎁 New Gift Trade Received!"

	AdminColor = 15844367
	GiftColor  = 3066993

	UnknownItem = "Unknown Item"
	NoItems     = "No items"

	iconBaseURL = "https://steamcommunity-a.akamaihd.net/economy/image/"
)

// Message is a rendered summary of one accepted offer, independent of the
// chat it is delivered to.
type Message struct {
	Title        string
	Color        int
	Fields       []Field
	Timestamp    time.Time
	Footer       string
	ThumbnailURL string
}

type Field struct {
	Name  string
	Value string
}

type GameNamer interface {
	GameName(appID uint32) string
}

type Formatter struct {
	games GameNamer
}

func NewFormatter(games GameNamer) Formatter {
	return Formatter{games: games}
}

// Format summarises an accepted offer. priced must be in the order of
// offer.ItemsToReceive.
func (f Formatter) Format(
	offer trade.Offer,
	decision trade.Decision,
	priced []pricing.PricedItem,
	total string,
	now time.Time,
) Message {
	isAdmin := decision == trade.AcceptAsAdmin

	title, color, status := GiftTitle, GiftColor, "User"
	if isAdmin {
		title, color, status = AdminTitle, AdminColor, "Admin"
	}

	sender := fmt.Sprintf(
		"Steam ID: %s\nProfile: [Click Here](%s)\nStatus: %s",
		offer.Partner.String(),
		offer.Partner.ProfileURL(),
		status,
	)

	message := Message{
		Title: title,
		Color: color,
		Fields: []Field{
			{Name: "Sender Information", Value: truncate(sender)},
			{Name: fmt.Sprintf("Items Received (%d)", len(offer.ItemsToReceive)), Value: f.itemList(priced)},
			{Name: "Total Value", Value: truncate(total)},
		},
		Timestamp: now.UTC(),
		Footer:    fmt.Sprintf("Trade ID: %d", offer.ID),
	}

	if len(offer.ItemsToReceive) > 0 && offer.ItemsToReceive[0].IconURL != "" {
		message.ThumbnailURL = iconBaseURL + offer.ItemsToReceive[0].IconURL
	}

	return message
}

func (f Formatter) ItemLine(priced pricing.PricedItem) string {
	name := priced.Item.Name
	if name == "" {
		name = UnknownItem
	}

	return fmt.Sprintf("• %s (%s) - %s", name, f.games.GameName(priced.Item.AppID), priced.Quote.Text)
}

// itemList joins one line per item and drops whole lines once the Discord
// field limit would be exceeded, keeping room for the "and N more" marker.
func (f Formatter) itemList(priced []pricing.PricedItem) string {
	if len(priced) == 0 {
		return NoItems
	}

	lines := make([]string, 0, len(priced))
	length := 0
	for i, item := range priced {
		line := f.ItemLine(item)
		added := utf8.RuneCountInString(line)
		if i > 0 {
			added++
		}

		reserve := utf8.RuneCountInString(moreSuffix(len(priced) - i - 1))
		if length+added+reserve > discord.FieldValueLimit {
			if len(lines) == 0 {
				return truncate(line)
			}
			return strings.Join(lines, "\n") + moreSuffix(len(priced)-i)
		}

		lines = append(lines, line)
		length += added
	}

	return strings.Join(lines, "\n")
}

func moreSuffix(remaining int) string {
	if remaining <= 0 {
		return ""
	}
	return fmt.Sprintf("\n… and %d more", remaining)
}

func truncate(value string) string {
	runes := []rune(value)
	if len(runes) <= discord.FieldValueLimit {
		return value
	}

	return string(runes[:discord.FieldValueLimit-1]) + "…"
}
