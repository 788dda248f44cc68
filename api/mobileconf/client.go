package mobileconf

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/steamid"
	"github.com/escrow-tf/giftbot/steamlang"
	"github.com/escrow-tf/giftbot/totp"
)

var ErrConfirmationNotFound = eris.New("no pending confirmation for trade offer")

type ConfirmationType int

//goland:noinspection GoUnusedConst
const (
	InvalidConfirmationType       ConfirmationType = 0
	TestConfirmationType          ConfirmationType = 1
	TradeConfirmationType         ConfirmationType = 2
	MarketListingConfirmationType ConfirmationType = 3
)

// TimeOffsetFunc reports how far the local clock is behind Steam's.
type TimeOffsetFunc func() time.Duration

type Client struct {
	Transport  api.Transport
	TotpState  *totp.State
	SteamID    steamid.SteamID
	TimeOffset TimeOffsetFunc
	BaseURL    string
}

func NewClient(transport api.Transport, totpState *totp.State, steamID steamid.SteamID, offset TimeOffsetFunc) *Client {
	return &Client{
		Transport:  transport,
		TotpState:  totpState,
		SteamID:    steamID,
		TimeOffset: offset,
		BaseURL:    api.CommunityURL,
	}
}

type Operation struct {
	Operation string
	ID        string
	Nonce     string
}

type Request struct {
	baseUrl   string
	path      string
	tag       string
	key       string
	deviceId  string
	steamId   string
	time      time.Time
	operation *Operation
}

func (r Request) Retryable() bool {
	return r.operation == nil
}

func (r Request) RequiresApiKey() bool {
	return false
}

func (r Request) Method() string {
	return http.MethodGet
}

func (r Request) Url() string {
	return fmt.Sprintf("%s/mobileconf/%s", r.baseUrl, r.path)
}

func (r Request) Values() (url.Values, error) {
	values := url.Values{
		"p":   []string{r.deviceId},
		"a":   []string{r.steamId},
		"k":   []string{r.key},
		"t":   []string{strconv.FormatInt(r.time.Unix(), 10)},
		"m":   []string{"react"},
		"tag": []string{r.tag},
	}

	if r.operation != nil {
		values.Add("op", r.operation.Operation)
		values.Add("cid", r.operation.ID)
		values.Add("ck", r.operation.Nonce)
	}

	return values, nil
}

func (r Request) Headers() (http.Header, error) {
	return nil, nil
}

func (r Request) EnsureResponseSuccess(httpResponse *http.Response) error {
	return steamlang.EnsureSuccessResponse(httpResponse)
}

func (c *Client) newRequest(path, tag string, operation *Operation) (Request, error) {
	if c.TotpState == nil || !c.TotpState.HasIdentitySecret() {
		return Request{}, eris.New("mobile confirmations need an identity secret")
	}

	var offset time.Duration
	if c.TimeOffset != nil {
		offset = c.TimeOffset()
	}
	now := totp.Time(offset)

	key, err := c.TotpState.ConfirmationKey(now, tag)
	if err != nil {
		return Request{}, eris.Wrap(err, "error generating confirmation key")
	}

	return Request{
		baseUrl:   c.BaseURL,
		path:      path,
		tag:       tag,
		key:       key,
		deviceId:  totp.GetDeviceId(c.SteamID.String()),
		steamId:   c.SteamID.String(),
		time:      now,
		operation: operation,
	}, nil
}

type Confirmation struct {
	ID           string           `json:"id"`
	Type         ConfirmationType `json:"type"`
	CreatorID    string           `json:"creator_id"`
	Nonce        string           `json:"nonce"`
	TypeName     string           `json:"type_name"`
	Headline     string           `json:"headline"`
	Summary      []string         `json:"summary"`
	CreationTime int64            `json:"creation_time"`
	Icon         string           `json:"icon"`
}

type GetListResponse struct {
	Success       bool           `json:"success"`
	NeedsAuth     bool           `json:"needauth,omitempty"`
	Message       string         `json:"message,omitempty"`
	Detail        string         `json:"detail,omitempty"`
	Confirmations []Confirmation `json:"conf"`
}

func (c *Client) GetList(ctx context.Context) (*GetListResponse, error) {
	request, err := c.newRequest("getlist", "list", nil)
	if err != nil {
		return nil, err
	}

	var response GetListResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return nil, eris.Wrap(sendErr, "getlist mobile conf request failed")
	}

	if !response.Success {
		return nil, eris.Errorf("getlist mobile conf request unsuccessful: needauth=%v %s %s",
			response.NeedsAuth, response.Message, response.Detail)
	}

	return &response, nil
}

type OperationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (c *Client) respond(ctx context.Context, op, id, nonce string) (*OperationResponse, error) {
	request, err := c.newRequest("ajaxop", op, &Operation{Operation: op, ID: id, Nonce: nonce})
	if err != nil {
		return nil, err
	}

	var response OperationResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return nil, eris.Wrapf(sendErr, "%s mobile conf request failed", op)
	}

	if !response.Success {
		return nil, eris.Errorf("%s mobile conf request unsuccessful: %s", op, response.Message)
	}

	return &response, nil
}

func (c *Client) Accept(ctx context.Context, id, nonce string) (*OperationResponse, error) {
	return c.respond(ctx, "allow", id, nonce)
}

func (c *Client) Decline(ctx context.Context, id, nonce string) (*OperationResponse, error) {
	return c.respond(ctx, "cancel", id, nonce)
}

// ConfirmTradeOffer approves the pending confirmation created for offerId.
func (c *Client) ConfirmTradeOffer(ctx context.Context, offerId uint64) error {
	list, err := c.GetList(ctx)
	if err != nil {
		return err
	}

	creator := strconv.FormatUint(offerId, 10)
	for _, confirmation := range list.Confirmations {
		if confirmation.CreatorID != creator {
			continue
		}

		_, err = c.Accept(ctx, confirmation.ID, confirmation.Nonce)
		return err
	}

	return eris.Wrapf(ErrConfirmationNotFound, "offer %d", offerId)
}
