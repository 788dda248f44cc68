package discord

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api"
)

// FieldValueLimit is the maximum length Discord accepts for an embed field value.
const FieldValueLimit = 1024

type WebhookPayload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

type Embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []EmbedField `json:"fields"`
	Timestamp string       `json:"timestamp,omitempty"`
	Footer    *EmbedFooter `json:"footer,omitempty"`
	Thumbnail *EmbedImage  `json:"thumbnail,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type Client struct {
	Transport api.Transport
}

func NewClient(transport api.Transport) *Client {
	return &Client{Transport: transport}
}

type ExecuteWebhookRequest struct {
	webhookUrl string
	payload    WebhookPayload
}

func (e ExecuteWebhookRequest) Retryable() bool {
	return false
}

func (e ExecuteWebhookRequest) RequiresApiKey() bool {
	return false
}

func (e ExecuteWebhookRequest) Method() string {
	return http.MethodPost
}

func (e ExecuteWebhookRequest) Url() string {
	return e.webhookUrl
}

func (e ExecuteWebhookRequest) Values() (url.Values, error) {
	return nil, nil
}

func (e ExecuteWebhookRequest) Headers() (http.Header, error) {
	return nil, nil
}

func (e ExecuteWebhookRequest) JsonBody() (any, error) {
	return e.payload, nil
}

func (e ExecuteWebhookRequest) EnsureResponseSuccess(httpResponse *http.Response) error {
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		return eris.Errorf("discord webhook responded with status %v", httpResponse.StatusCode)
	}

	return nil
}

func (c *Client) ExecuteWebhook(ctx context.Context, webhookUrl string, payload WebhookPayload) error {
	if webhookUrl == "" {
		return eris.New("discord webhook url is empty")
	}

	request := ExecuteWebhookRequest{
		webhookUrl: webhookUrl,
		payload:    payload,
	}

	if err := c.Transport.Send(ctx, request, nil); err != nil {
		return eris.Wrap(err, "error executing discord webhook")
	}

	return nil
}
