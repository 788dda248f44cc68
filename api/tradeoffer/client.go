package tradeoffer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/steamid"
	"github.com/escrow-tf/giftbot/steamlang"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type Client struct {
	Transport     api.Transport
	SessionIdFunc api.SessionIdFunc
	BaseURL       string
}

func NewClient(transport api.Transport, sessionIdFunc api.SessionIdFunc) *Client {
	return &Client{
		Transport:     transport,
		SessionIdFunc: sessionIdFunc,
		BaseURL:       api.CommunityURL,
	}
}

type ActionResponse struct {
	TradeOfferId uint64 `json:"tradeofferid,string"`
	Error        string `json:"strError,omitempty"`
}

type AcceptResponse struct {
	TradeId                 uint64 `json:"tradeid,string"`
	NeedsMobileConfirmation bool   `json:"needs_mobile_confirmation"`
	NeedsEmailConfirmation  bool   `json:"needs_email_confirmation"`
	EmailDomain             string `json:"email_domain,omitempty"`
	Error                   string `json:"strError,omitempty"`
}

type ActionRequest struct {
	baseUrl   string
	id        uint64
	verb      string
	sessionId string
	partner   steamid.SteamID
}

func (t ActionRequest) Retryable() bool {
	return false
}

func (t ActionRequest) RequiresApiKey() bool {
	return false
}

func (t ActionRequest) Method() string {
	return http.MethodPost
}

func (t ActionRequest) Url() string {
	return fmt.Sprintf("%s/tradeoffer/%d/%s", t.baseUrl, t.id, t.verb)
}

func (t ActionRequest) Values() (url.Values, error) {
	values := url.Values{
		"sessionid": []string{t.sessionId},
	}

	if t.verb == "accept" {
		values.Add("serverid", "1")
		values.Add("tradeofferid", strconv.FormatUint(t.id, 10))
		values.Add("partner", t.partner.String())
		values.Add("captcha", "")
	}

	return values, nil
}

func (t ActionRequest) Headers() (http.Header, error) {
	return http.Header{
		"Referer": []string{fmt.Sprintf("%s/tradeoffer/%d/", t.baseUrl, t.id)},
	}, nil
}

// EnsureResponseSuccess turns the strError body steamcommunity.com sends with
// failed actions into a sentinel error when it carries a known EResult.
func (t ActionRequest) EnsureResponseSuccess(httpResponse *http.Response) error {
	if httpResponse.StatusCode >= 200 && httpResponse.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 64*1024))

	var failure struct {
		Error string `json:"strError"`
	}
	if json.Unmarshal(body, &failure) == nil && failure.Error != "" {
		return actionError(t.verb, failure.Error)
	}

	return eris.Errorf("%s trade offer %d failed with status %v", t.verb, t.id, httpResponse.StatusCode)
}

func actionError(verb string, message string) error {
	if result, ok := steamlang.ParseErrorCode(message); ok {
		if sentinel := ErrorForResult(result); sentinel != nil {
			return eris.Wrapf(sentinel, "%s trade offer: %s", verb, message)
		}
	}

	return eris.Errorf("%s trade offer: %s", verb, message)
}

func (c *Client) sessionId() (string, error) {
	if c.SessionIdFunc == nil {
		return "", eris.New("no session id function configured")
	}

	sessionId, err := c.SessionIdFunc()
	if err != nil {
		return "", eris.Wrap(err, "error retrieving sessionId from transport")
	}

	return sessionId, nil
}

func (c *Client) Accept(ctx context.Context, id uint64, partner steamid.SteamID) (*AcceptResponse, error) {
	sessionId, err := c.sessionId()
	if err != nil {
		return nil, err
	}

	request := ActionRequest{
		baseUrl:   c.BaseURL,
		id:        id,
		verb:      "accept",
		sessionId: sessionId,
		partner:   partner,
	}
	var response AcceptResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return nil, sendErr
	}

	if response.Error != "" {
		return nil, actionError(request.verb, response.Error)
	}

	return &response, nil
}

func (c *Client) Decline(ctx context.Context, id uint64) (*ActionResponse, error) {
	sessionId, err := c.sessionId()
	if err != nil {
		return nil, err
	}

	request := ActionRequest{
		baseUrl:   c.BaseURL,
		id:        id,
		verb:      "decline",
		sessionId: sessionId,
	}
	var response ActionResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return nil, sendErr
	}

	if response.Error != "" {
		return nil, actionError(request.verb, response.Error)
	}

	return &response, nil
}
