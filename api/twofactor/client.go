package twofactor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/steamlang"
)

type Client struct {
	Transport api.Transport
	BaseURL   string

	mu       sync.RWMutex
	aligned  bool
	timeDiff time.Duration
}

func NewClient(transport api.Transport) *Client {
	return &Client{
		Transport: transport,
		BaseURL:   api.BaseURL,
	}
}

func (c *Client) SteamTime() (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.aligned {
		return time.Time{}, eris.New("AlignTime must be called before SteamTime can be retrieved")
	}
	return time.Now().UTC().Add(c.timeDiff), nil
}

// Offset is the difference between Steam's clock and ours, zero until aligned.
func (c *Client) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeDiff
}

func (c *Client) AlignTime(ctx context.Context) error {
	unixNow := time.Now().Unix()
	timeResponse, err := c.QueryTime(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.timeDiff = time.Second * time.Duration(timeResponse.Response.ServerTime-unixNow)
	c.aligned = true
	c.mu.Unlock()
	return nil
}

type QueryTimeRequest struct {
	baseUrl string
}

func (q QueryTimeRequest) Retryable() bool {
	return true
}

func (q QueryTimeRequest) RequiresApiKey() bool {
	return false
}

func (q QueryTimeRequest) Method() string {
	return http.MethodPost
}

func (q QueryTimeRequest) Url() string {
	return fmt.Sprintf("%s/ITwoFactorService/QueryTime/v0001", q.baseUrl)
}

func (q QueryTimeRequest) Values() (url.Values, error) {
	return url.Values{
		"steamid": []string{"0"},
	}, nil
}

func (q QueryTimeRequest) Headers() (http.Header, error) {
	return nil, nil
}

func (q QueryTimeRequest) EnsureResponseSuccess(httpResponse *http.Response) error {
	return steamlang.EnsureSuccessResponse(httpResponse)
}

type QueryTimeResponse struct {
	Response struct {
		ServerTime int64 `json:"server_time,string"`
	} `json:"response"`
}

func (c *Client) QueryTime(ctx context.Context) (*QueryTimeResponse, error) {
	request := QueryTimeRequest{baseUrl: c.BaseURL}
	var response QueryTimeResponse
	sendErr := c.Transport.Send(ctx, request, &response)
	if sendErr != nil {
		return nil, sendErr
	}
	return &response, nil
}
