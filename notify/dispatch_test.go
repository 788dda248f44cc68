package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrow-tf/giftbot/api/discord"
	"github.com/escrow-tf/giftbot/notify"
)

type fakeWebhook struct {
	url     string
	payload discord.WebhookPayload
	err     error
}

func (f *fakeWebhook) ExecuteWebhook(_ context.Context, webhookUrl string, payload discord.WebhookPayload) error {
	f.url = webhookUrl
	f.payload = payload
	return f.err
}

type fakeDispatcher struct {
	messages []notify.Message
	err      error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, message notify.Message) error {
	f.messages = append(f.messages, message)
	return f.err
}

func testMessage() notify.Message {
	return notify.Message{
		Title: notify.GiftTitle,
		Color: notify.GiftColor,
		Fields: []notify.Field{
			{Name: "Sender Information", Value: "Profile: [Click Here](https://steamcommunity.com/profiles/1)"},
			{Name: "Total Value", Value: "<$1.00>"},
		},
		Timestamp:    testNow,
		Footer:       "Trade ID: 9",
		ThumbnailURL: "https://example.test/icon",
	}
}

func TestDiscordDispatch(t *testing.T) {
	rq := require.New(t)

	webhook := &fakeWebhook{}
	dispatcher := notify.NewDiscord(webhook, "https://discord.test/hook", "Steam Trade Bot", "https://example.test/avatar")

	rq.NoError(dispatcher.Dispatch(context.Background(), testMessage()))
	rq.Equal("https://discord.test/hook", webhook.url)
	rq.Equal("Steam Trade Bot", webhook.payload.Username)
	rq.Equal("https://example.test/avatar", webhook.payload.AvatarURL)
	rq.Len(webhook.payload.Embeds, 1)

	embed := webhook.payload.Embeds[0]
	rq.Equal(notify.GiftTitle, embed.Title)
	rq.Equal(notify.GiftColor, embed.Color)
	rq.Len(embed.Fields, 2)
	rq.Equal("2024-05-01T12:00:00Z", embed.Timestamp)
	rq.Equal("Trade ID: 9", embed.Footer.Text)
	rq.Equal("https://example.test/icon", embed.Thumbnail.URL)
}

func TestToEmbedOmitsEmptyParts(t *testing.T) {
	rq := require.New(t)

	embed := notify.ToEmbed(notify.Message{Title: "t"})

	rq.Empty(embed.Timestamp)
	rq.Nil(embed.Footer)
	rq.Nil(embed.Thumbnail)
	rq.NotNil(embed.Fields)
}

func TestRenderHTML(t *testing.T) {
	rq := require.New(t)

	rendered := notify.RenderHTML(testMessage())

	rq.Contains(rendered, "<b>"+notify.GiftTitle+"</b>")
	rq.Contains(rendered, `<a href="https://steamcommunity.com/profiles/1">Click Here</a>`)
	rq.Contains(rendered, "&lt;$1.00&gt;")
	rq.Contains(rendered, "<i>Trade ID: 9</i>")
}

func TestMultiDispatchesToAll(t *testing.T) {
	rq := require.New(t)

	failing := &fakeDispatcher{err: errors.New("webhook down")}
	working := &fakeDispatcher{}

	err := notify.Multi{failing, working}.Dispatch(context.Background(), testMessage())

	rq.ErrorContains(err, "webhook down")
	rq.Len(failing.messages, 1)
	rq.Len(working.messages, 1)
	rq.NoError(notify.Multi{working}.Dispatch(context.Background(), testMessage()))
}
