package market

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/steamlang"
)

// USDCurrency is the currency code the market endpoint uses for US dollars.
const USDCurrency = 1

type Client struct {
	Transport api.Transport
	BaseURL   string
	Currency  int
}

func NewClient(transport api.Transport) *Client {
	return &Client{
		Transport: transport,
		BaseURL:   api.CommunityURL,
		Currency:  USDCurrency,
	}
}

type PriceOverviewRequest struct {
	baseUrl        string
	appID          uint32
	currency       int
	marketHashName string
}

// Retryable is false: one request per item, a failed lookup is reported as
// unavailable instead.
func (p PriceOverviewRequest) Retryable() bool {
	return false
}

func (p PriceOverviewRequest) RequiresApiKey() bool {
	return false
}

func (p PriceOverviewRequest) Method() string {
	return http.MethodGet
}

func (p PriceOverviewRequest) Url() string {
	return p.baseUrl + "/market/priceoverview/"
}

func (p PriceOverviewRequest) Values() (url.Values, error) {
	values := make(url.Values)
	values.Add("appid", strconv.FormatUint(uint64(p.appID), 10))
	values.Add("currency", strconv.Itoa(p.currency))
	values.Add("market_hash_name", p.marketHashName)
	return values, nil
}

func (p PriceOverviewRequest) Headers() (http.Header, error) {
	return nil, nil
}

func (p PriceOverviewRequest) EnsureResponseSuccess(httpResponse *http.Response) error {
	return steamlang.EnsureSuccessResponse(httpResponse)
}

// PriceOverviewResponse carries prices as currency-prefixed display strings,
// e.g. "$12.34". LowestPrice is empty when the market has no listing.
type PriceOverviewResponse struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price,omitempty"`
	MedianPrice string `json:"median_price,omitempty"`
	Volume      string `json:"volume,omitempty"`
}

func (c *Client) PriceOverview(ctx context.Context, appID uint32, marketHashName string) (*PriceOverviewResponse, error) {
	request := PriceOverviewRequest{
		baseUrl:        c.BaseURL,
		appID:          appID,
		currency:       c.Currency,
		marketHashName: marketHashName,
	}
	var response PriceOverviewResponse
	sendErr := c.Transport.Send(ctx, request, &response)
	if sendErr != nil {
		return nil, sendErr
	}

	return &response, nil
}
