package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api/discord"
)

// Dispatcher delivers a message to a chat. Delivery is best-effort: callers
// log the error and carry on.
type Dispatcher interface {
	Dispatch(ctx context.Context, message Message) error
}

type Discord struct {
	client     discord.Api
	webhookUrl string
	username   string
	avatarUrl  string
}

func NewDiscord(client discord.Api, webhookUrl, username, avatarUrl string) *Discord {
	return &Discord{
		client:     client,
		webhookUrl: webhookUrl,
		username:   username,
		avatarUrl:  avatarUrl,
	}
}

func (d *Discord) Dispatch(ctx context.Context, message Message) error {
	return d.client.ExecuteWebhook(ctx, d.webhookUrl, discord.WebhookPayload{
		Username:  d.username,
		AvatarURL: d.avatarUrl,
		Embeds:    []discord.Embed{ToEmbed(message)},
	})
}

func ToEmbed(message Message) discord.Embed {
	embed := discord.Embed{
		Title:  message.Title,
		Color:  message.Color,
		Fields: make([]discord.EmbedField, 0, len(message.Fields)),
	}

	for _, field := range message.Fields {
		embed.Fields = append(embed.Fields, discord.EmbedField{Name: field.Name, Value: field.Value})
	}

	if !message.Timestamp.IsZero() {
		embed.Timestamp = message.Timestamp.Format(time.RFC3339)
	}

	if message.Footer != "" {
		embed.Footer = &discord.EmbedFooter{Text: message.Footer}
	}

	if message.ThumbnailURL != "" {
		embed.Thumbnail = &discord.EmbedImage{URL: message.ThumbnailURL}
	}

	return embed
}

type Telegram struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, eris.Wrap(err, "create telegram bot")
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (t *Telegram) Dispatch(ctx context.Context, message Message) error {
	msg := tu.Message(tu.ID(t.chatID), RenderHTML(message)).
		WithParseMode(telego.ModeHTML)

	if _, err := t.bot.SendMessage(ctx, msg); err != nil {
		return eris.Wrap(err, "send telegram message")
	}

	return nil
}

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// RenderHTML renders a message in the HTML subset Telegram accepts.
// Markdown links produced by the formatter become anchors.
func RenderHTML(message Message) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "<b>%s</b>\n", html.EscapeString(message.Title))
	for _, field := range message.Fields {
		value := markdownLink.ReplaceAllString(html.EscapeString(field.Value), `<a href="$2">$1</a>`)
		fmt.Fprintf(&builder, "\n<b>%s</b>\n%s\n", html.EscapeString(field.Name), value)
	}

	if message.Footer != "" {
		fmt.Fprintf(&builder, "\n<i>%s</i>", html.EscapeString(message.Footer))
	}

	return builder.String()
}

// Multi fans a message out to every dispatcher, even when some fail.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, message Message) error {
	var errs []error
	for _, dispatcher := range m {
		if err := dispatcher.Dispatch(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
