package community

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/steamid"
	"github.com/escrow-tf/giftbot/steamlang"
)

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

type PostCommentRequest struct {
	baseUrl   string
	profile   steamid.SteamID
	comment   string
	sessionId string
}

func (p PostCommentRequest) Retryable() bool {
	return false
}

func (p PostCommentRequest) RequiresApiKey() bool {
	return false
}

func (p PostCommentRequest) Method() string {
	return http.MethodPost
}

func (p PostCommentRequest) Url() string {
	return fmt.Sprintf("%s/comment/Profile/post/%s/-1/", p.baseUrl, p.profile.String())
}

func (p PostCommentRequest) Values() (url.Values, error) {
	return url.Values{
		"comment":   []string{p.comment},
		"count":     []string{"6"},
		"sessionid": []string{p.sessionId},
	}, nil
}

func (p PostCommentRequest) Headers() (http.Header, error) {
	return http.Header{
		"Referer": []string{p.profile.ProfileURL()},
	}, nil
}

func (p PostCommentRequest) EnsureResponseSuccess(httpResponse *http.Response) error {
	return steamlang.EnsureSuccessResponse(httpResponse)
}

type PostCommentResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (c *Client) PostComment(ctx context.Context, profile steamid.SteamID, comment string) error {
	if !profile.IsValid() {
		return eris.Errorf("cannot comment on invalid profile %q", profile.String())
	}

	if c.SessionIdFunc == nil {
		return eris.New("no session id function configured")
	}

	sessionId, err := c.SessionIdFunc()
	if err != nil {
		return eris.Wrap(err, "error retrieving sessionId from transport")
	}

	request := PostCommentRequest{
		baseUrl:   c.BaseURL,
		profile:   profile,
		comment:   comment,
		sessionId: sessionId,
	}
	var response PostCommentResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return sendErr
	}

	if !response.Success {
		return eris.Errorf("steam rejected comment on %s: %s", profile.String(), response.Error)
	}

	return nil
}
