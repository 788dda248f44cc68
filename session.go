package giftbot

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/api/auth"
	"github.com/escrow-tf/giftbot/api/community"
	"github.com/escrow-tf/giftbot/api/econ"
	"github.com/escrow-tf/giftbot/api/market"
	"github.com/escrow-tf/giftbot/api/mobileconf"
	"github.com/escrow-tf/giftbot/api/tradeoffer"
	"github.com/escrow-tf/giftbot/api/twofactor"
	"github.com/escrow-tf/giftbot/logx"
	"github.com/escrow-tf/giftbot/steamid"
	"github.com/escrow-tf/giftbot/totp"
)

const (
	maxPollAttempts      = 10
	refreshBeforeExpiry  = 5 * time.Minute
	defaultRefreshPeriod = time.Hour
	refreshRetryPeriod   = time.Minute
)

type Account struct {
	accountName string
	password    string
	totpState   *totp.State
}

func NewAccount(accountName string, password string, sharedSecret string, identitySecret string) (*Account, error) {
	state, err := totp.NewState(sharedSecret, identitySecret)
	if err != nil {
		return nil, eris.Wrap(err, "NewAccount failed")
	}

	return &Account{
		accountName: accountName,
		password:    password,
		totpState:   state,
	}, nil
}

func (a *Account) TotpState() *totp.State {
	return a.totpState
}

type SessionOptions struct {
	WebApiKey string
	Timeout   time.Duration
	Logger    *slog.Logger

	// Overridable for tests.
	BaseURL      string
	CommunityURL string
}

// WebSession is a logged-in steamcommunity.com session. Its cookie jar is
// shared by every client it hands out.
type WebSession struct {
	account      *Account
	transport    *api.HttpTransport
	authClient   *auth.Client
	twoFactor    *twofactor.Client
	communityURL *url.URL
	baseURL      string
	logger       *slog.Logger

	econClient       *econ.Client
	tradeOfferClient *tradeoffer.Client
	communityClient  *community.Client
	mobileConfClient *mobileconf.Client
	marketClient     *market.Client

	mu              sync.RWMutex
	clientId        string
	requestId       string
	steamId         steamid.SteamID
	refreshToken    string
	accessToken     string
	accessExpiresAt time.Time
	pollInterval    time.Duration
}

func (a *Account) Authenticate(ctx context.Context, options SessionOptions) (*WebSession, error) {
	session, err := newWebSession(a, options)
	if err != nil {
		return nil, err
	}

	if err = session.login(ctx); err != nil {
		return nil, err
	}

	session.wireClients()
	return session, nil
}

func newWebSession(account *Account, options SessionOptions) (*WebSession, error) {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = api.BaseURL
	}

	communityBase := options.CommunityURL
	if communityBase == "" {
		communityBase = api.CommunityURL
	}

	communityURL, err := url.Parse(communityBase + "/")
	if err != nil {
		return nil, eris.Wrapf(err, "invalid community url %q", communityBase)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := api.NewTransport(api.HttpTransportOptions{
		WebApiKey: options.WebApiKey,
		Timeout:   options.Timeout,
		Logger:    logger,
	})

	authClient := auth.NewClient(transport)
	authClient.BaseURL = baseURL
	twoFactor := twofactor.NewClient(transport)
	twoFactor.BaseURL = baseURL

	return &WebSession{
		account:      account,
		transport:    transport,
		authClient:   authClient,
		twoFactor:    twoFactor,
		communityURL: communityURL,
		baseURL:      baseURL,
		logger:       logger,
	}, nil
}

func (w *WebSession) login(ctx context.Context) error {
	if err := w.twoFactor.AlignTime(ctx); err != nil {
		w.logger.WarnContext(ctx, "could not align time with steam, using local clock", logx.Error(err))
	}

	deviceHostName, err := os.Hostname()
	if err != nil {
		deviceHostName = "giftbot"
	}

	encryptedPassword, err := w.authClient.EncryptAccountPassword(ctx, w.account.accountName, w.account.password)
	if err != nil {
		return eris.Wrap(err, "EncryptAccountPassword failed")
	}

	deviceDetails := auth.DeviceDetails{
		FriendlyName:     fmt.Sprintf("%s (giftbot)", deviceHostName),
		PlatformType:     auth.MobileAppPlatformType,
		OsType:           auth.AndroidUnknownOsType,
		GamingDeviceType: auth.DefaultGamingDeviceType,
	}

	sessionResponse, err := w.authClient.StartSessionWithCredentials(
		ctx, w.account.accountName, encryptedPassword, deviceDetails,
	)
	if err != nil {
		return eris.Wrap(err, "StartSessionWithCredentials failed")
	}

	if !sessionResponse.Allows(auth.DeviceCodeGuardType) {
		return eris.New("DeviceCode auth not in list of allowed confirmations")
	}

	steamID, err := steamid.ParseSteamID64(sessionResponse.Response.SteamId)
	if err != nil {
		return eris.Wrap(err, "session response returned invalid steamid64")
	}

	code := w.account.totpState.AuthCode(totp.Time(w.twoFactor.Offset()))
	err = w.authClient.SubmitSteamGuardCode(ctx, sessionResponse.Response.ClientId, steamID, code)
	if err != nil {
		return eris.Wrap(err, "error submitting totp code")
	}

	w.mu.Lock()
	w.clientId = sessionResponse.Response.ClientId
	w.requestId = sessionResponse.Response.RequestId
	w.steamId = steamID
	w.pollInterval = time.Duration(sessionResponse.Response.Interval * float64(time.Second))
	w.mu.Unlock()

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		done, pollErr := w.pollSession(ctx)
		if pollErr != nil {
			return pollErr
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return eris.Wrap(ctx.Err(), "login cancelled while polling")
		case <-time.After(w.pollInterval):
		}
	}

	// N.B. we need a refresh token in order to get an access token, which we need in order to create the
	// steamLoginSecure web cookie
	return eris.New("no refresh token found in poll response")
}

func (w *WebSession) pollSession(ctx context.Context) (bool, error) {
	w.mu.RLock()
	clientId, requestId := w.clientId, w.requestId
	w.mu.RUnlock()

	pollResponse, err := w.authClient.PollSessionStatus(ctx, clientId, requestId)
	if err != nil {
		return false, eris.Wrap(err, "PollSessionStatus failed")
	}

	if len(pollResponse.Response.NewClientID) > 0 {
		w.mu.Lock()
		w.clientId = pollResponse.Response.NewClientID
		w.mu.Unlock()
	}

	if len(pollResponse.Response.RefreshToken) == 0 {
		return false, nil
	}

	accessToken := pollResponse.Response.AccessToken
	refreshToken := pollResponse.Response.RefreshToken
	if len(accessToken) == 0 {
		// under some circumstances the access token is not issued when polling login
		accessTokenResponse, accessTokenErr := w.authClient.GenerateAccessTokenForApp(ctx, refreshToken, false)
		if accessTokenErr != nil {
			return false, eris.Wrap(accessTokenErr, "GenerateAccessTokenForApp failed")
		}
		accessToken = accessTokenResponse.Response.AccessToken
	}

	if err = w.setTokens(accessToken, refreshToken); err != nil {
		return false, err
	}

	return true, w.finalizeLogin()
}

func (w *WebSession) setTokens(accessToken, refreshToken string) error {
	if _, err := auth.ParseTokenClaims(refreshToken); err != nil {
		return eris.Wrap(err, "refresh token was invalid")
	}

	accessClaims, err := auth.ParseTokenClaims(accessToken)
	if err != nil {
		return eris.Wrap(err, "access token was invalid")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.accessToken = accessToken
	w.refreshToken = refreshToken
	w.accessExpiresAt = accessClaims.ExpiresAt
	return nil
}

func (w *WebSession) finalizeLogin() error {
	sessionId, err := w.SessionId()
	if err != nil {
		sessionIdBuffer := [12]byte{}
		if _, randErr := rand.Read(sessionIdBuffer[:]); randErr != nil {
			return eris.Wrap(randErr, "error creating sessionid bytes")
		}
		sessionId = hex.EncodeToString(sessionIdBuffer[:])
	}

	w.mu.RLock()
	steamLoginSecure := fmt.Sprintf("%s||%s", w.steamId.String(), w.accessToken)
	w.mu.RUnlock()

	w.transport.CookieJar().SetCookies(w.communityURL, []*http.Cookie{
		{
			Name:  "sessionid",
			Value: sessionId,
		},
		{
			Name:  "steamLoginSecure",
			Value: url.QueryEscape(steamLoginSecure),
		},
	})

	return nil
}

// refresh renews the access token from the refresh token and reissues the
// steamLoginSecure cookie.
func (w *WebSession) refresh(ctx context.Context) error {
	w.mu.RLock()
	refreshToken := w.refreshToken
	w.mu.RUnlock()

	response, err := w.authClient.GenerateAccessTokenForApp(ctx, refreshToken, true)
	if err != nil {
		return eris.Wrap(err, "GenerateAccessTokenForApp failed")
	}

	if response.Response.RefreshToken != "" {
		refreshToken = response.Response.RefreshToken
	}

	if err = w.setTokens(response.Response.AccessToken, refreshToken); err != nil {
		return err
	}

	return w.finalizeLogin()
}

func (w *WebSession) nextRefresh(now time.Time) time.Duration {
	w.mu.RLock()
	expiresAt := w.accessExpiresAt
	w.mu.RUnlock()

	if expiresAt.IsZero() {
		return defaultRefreshPeriod
	}

	wait := expiresAt.Add(-refreshBeforeExpiry).Sub(now)
	if wait < refreshRetryPeriod {
		return refreshRetryPeriod
	}
	return wait
}

// KeepAlive refreshes the access token shortly before it expires until ctx
// is cancelled. Failed refreshes are logged and retried.
func (w *WebSession) KeepAlive(ctx context.Context) {
	timer := time.NewTimer(w.nextRefresh(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		next := refreshRetryPeriod
		if err := w.refresh(ctx); err != nil {
			w.logger.ErrorContext(ctx, "error refreshing web session", logx.Error(err))
		} else {
			next = w.nextRefresh(time.Now())
			w.logger.InfoContext(ctx, "refreshed web session", slog.Duration("next_refresh", next))
		}

		timer.Reset(next)
	}
}

func (w *WebSession) wireClients() {
	w.econClient = econ.NewClient(w.transport)
	w.econClient.BaseURL = w.baseURL

	communityBase := strings.TrimSuffix(w.communityURL.String(), "/")

	w.tradeOfferClient = tradeoffer.NewClient(w.transport, w.SessionId)
	w.tradeOfferClient.BaseURL = communityBase

	w.communityClient = community.NewClient(w.transport, w.SessionId)
	w.communityClient.BaseURL = communityBase

	w.mobileConfClient = mobileconf.NewClient(w.transport, w.account.totpState, w.SteamId(), w.twoFactor.Offset)
	w.mobileConfClient.BaseURL = communityBase

	w.marketClient = market.NewClient(w.transport)
	w.marketClient.BaseURL = communityBase
}

func (w *WebSession) SteamId() steamid.SteamID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.steamId
}

func (w *WebSession) SessionId() (string, error) {
	for _, cookie := range w.transport.CookieJar().Cookies(w.communityURL) {
		if strings.ToLower(cookie.Name) == "sessionid" {
			return cookie.Value, nil
		}
	}

	return "", eris.New("could not find sessionid cookie")
}

func (w *WebSession) Transport() api.Transport {
	return w.transport
}

func (w *WebSession) EconClient() *econ.Client {
	return w.econClient
}

func (w *WebSession) TradeOfferClient() *tradeoffer.Client {
	return w.tradeOfferClient
}

func (w *WebSession) CommunityClient() *community.Client {
	return w.communityClient
}

func (w *WebSession) MobileConfClient() *mobileconf.Client {
	return w.mobileConfClient
}

func (w *WebSession) MarketClient() *market.Client {
	return w.marketClient
}
