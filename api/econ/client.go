package econ

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/api/community"
	"github.com/escrow-tf/giftbot/steamlang"
)

type OfferState uint

//goland:noinspection GoUnusedConst
const (
	// InvalidOfferState - Invalid
	InvalidOfferState OfferState = 1
	// ActiveOfferState - This trade offer has been sent, neither party has acted on it yet.
	ActiveOfferState OfferState = 2
	// AcceptedOfferState - The trade offer was accepted by the recipient and items were exchanged.
	AcceptedOfferState OfferState = 3
	// CounteredOfferState - The recipient made a counter-offer
	CounteredOfferState OfferState = 4
	// ExpiredOfferState - The trade offer was not accepted before the expiration date
	ExpiredOfferState OfferState = 5
	// CanceledOfferState - The sender cancelled the offer
	CanceledOfferState OfferState = 6
	// DeclinedOfferState - The recipient declined the offer
	DeclinedOfferState OfferState = 7
	// InvalidItemsOfferState - Some of the items in the offer are no longer available (indicated by the
	// missing flag in the output)
	InvalidItemsOfferState OfferState = 8
	// CreatedNeedsConfirmationOfferState - The offer hasn't been sent yet and is awaiting email/mobile
	// confirmation. The offer is only visible to the sender.
	CreatedNeedsConfirmationOfferState OfferState = 9
	// CanceledBySecondFactorOfferState - Either party canceled the offer via email/mobile.
	CanceledBySecondFactorOfferState OfferState = 10
	// InEscrowOfferState - The trade has been placed on hold.
	InEscrowOfferState OfferState = 11
)

type OfferConfirmationMethod uint

//goland:noinspection GoUnusedConst
const (
	InvalidOfferConfirmationMethod   OfferConfirmationMethod = 0
	EmailOfferConfirmationMethod     OfferConfirmationMethod = 1
	MobileAppOfferConfirmationMethod OfferConfirmationMethod = 2
)

type TradeOffer struct {
	TradeOfferId       uint64                  `json:"tradeofferid,string"`
	TradeId            uint64                  `json:"tradeid,string,omitempty"`
	OtherAccountId     uint32                  `json:"accountid_other"`
	Message            string                  `json:"message"`
	ExpirationTime     int64                   `json:"expiration_time"`
	State              OfferState              `json:"trade_offer_state"`
	ToGive             []*community.Asset      `json:"items_to_give"`
	ToReceive          []*community.Asset      `json:"items_to_receive"`
	IsOurOffer         bool                    `json:"is_our_offer"`
	TimeCreated        int64                   `json:"time_created"`
	TimeUpdated        int64                   `json:"time_updated"`
	EscrowEndDate      int64                   `json:"escrow_end_date"`
	ConfirmationMethod OfferConfirmationMethod `json:"confirmation_method"`
}

type Client struct {
	Transport api.Transport
	BaseURL   string
}

func NewClient(transport api.Transport) *Client {
	return &Client{
		Transport: transport,
		BaseURL:   api.BaseURL,
	}
}

type GetTradeOffersOptions struct {
	GetSent          bool
	GetReceived      bool
	GetDescriptions  bool
	ActiveOnly       bool
	HistoricalOnly   bool
	HistoricalCutoff uint32
	Language         string
}

// ActiveReceived asks for every pending offer sent to us, with descriptions.
func ActiveReceived() GetTradeOffersOptions {
	return GetTradeOffersOptions{
		GetReceived:     true,
		GetDescriptions: true,
		ActiveOnly:      true,
		Language:        "english",
	}
}

type GetTradeOffersRequest struct {
	baseUrl string
	options GetTradeOffersOptions
}

func (g GetTradeOffersRequest) EnsureResponseSuccess(httpResponse *http.Response) error {
	return steamlang.EnsureSuccessResponse(httpResponse)
}

func (g GetTradeOffersRequest) Headers() (http.Header, error) {
	return nil, nil
}

func (g GetTradeOffersRequest) Retryable() bool {
	return true
}

func (g GetTradeOffersRequest) RequiresApiKey() bool {
	return true
}

func (g GetTradeOffersRequest) Method() string {
	return http.MethodGet
}

func (g GetTradeOffersRequest) Url() string {
	return fmt.Sprintf("%s/IEconService/GetTradeOffers/v1/", g.baseUrl)
}

func (g GetTradeOffersRequest) Values() (url.Values, error) {
	values := make(url.Values)
	if g.options.Language != "" {
		values.Add("language", g.options.Language)
	}
	if g.options.GetSent {
		values.Add("get_sent_offers", "1")
	}
	if g.options.GetReceived {
		values.Add("get_received_offers", "1")
	}
	if g.options.GetDescriptions {
		values.Add("get_descriptions", "1")
	}
	if g.options.ActiveOnly {
		values.Add("active_only", "1")
	}
	if g.options.HistoricalOnly {
		values.Add("historical_only", "1")
	}
	if g.options.HistoricalCutoff != 0 {
		values.Add("time_historical_cutoff", strconv.FormatUint(uint64(g.options.HistoricalCutoff), 10))
	}
	return values, nil
}

type GetTradeOffersResponse struct {
	Sent         []*TradeOffer            `json:"trade_offers_sent"`
	Received     []*TradeOffer            `json:"trade_offers_received"`
	Descriptions []*community.Description `json:"descriptions"`
}

type getTradeOffersEnvelope struct {
	Response GetTradeOffersResponse `json:"response"`
}

func (c *Client) GetTradeOffers(ctx context.Context, options GetTradeOffersOptions) (*GetTradeOffersResponse, error) {
	request := GetTradeOffersRequest{
		baseUrl: c.BaseURL,
		options: options,
	}
	var envelope getTradeOffersEnvelope
	sendErr := c.Transport.Send(ctx, request, &envelope)
	if sendErr != nil {
		return nil, sendErr
	}

	return &envelope.Response, nil
}
