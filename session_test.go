package giftbot

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/escrow-tf/giftbot/steamid"
)

const testSteamID = "76561197960287930"

func testToken(t *testing.T, expiresAt time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   testSteamID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        fmt.Sprint(time.Now().UnixNano()),
	})
	signed, err := token.SignedString([]byte("test"))
	require.NoError(t, err)
	return signed
}

type fakeSteam struct {
	t          *testing.T
	key        *rsa.PrivateKey
	polls      atomic.Int32
	refreshes  atomic.Int32
	pollsEmpty int32
}

func (f *fakeSteam) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	switch r.URL.Path {
	case "/ITwoFactorService/QueryTime/v0001":
		fmt.Fprintf(w, `{"response":{"server_time":"%d"}}`, time.Now().Unix())
	case "/IAuthenticationService/GetPasswordRSAPublicKey/v1/":
		fmt.Fprintf(w, `{"response":{"publickey_mod":"%s","publickey_exp":"%x","timestamp":"1"}}`,
			f.key.N.Text(16), f.key.E)
	case "/IAuthenticationService/BeginAuthSessionViaCredentials/v1/":
		fmt.Fprintf(w, `{"response":{"client_id":"c1","request_id":"r1","interval":0.01,"steamid":"%s",
			"allowed_confirmations":[{"confirmation_type":3}]}}`, testSteamID)
	case "/IAuthenticationService/UpdateAuthSessionWithSteamGuardCode/v1/":
		w.Write([]byte(`{"response":{}}`))
	case "/IAuthenticationService/PollAuthSessionStatus/v1/":
		if f.polls.Add(1) <= f.pollsEmpty {
			w.Write([]byte(`{"response":{}}`))
			return
		}
		fmt.Fprintf(w, `{"response":{"refresh_token":"%s","access_token":"%s"}}`,
			testToken(f.t, time.Now().Add(24*time.Hour)), testToken(f.t, time.Now().Add(time.Hour)))
	case "/IAuthenticationService/GenerateAccessTokenForApp/v1/":
		f.refreshes.Add(1)
		fmt.Fprintf(w, `{"response":{"access_token":"%s"}}`, testToken(f.t, time.Now().Add(2*time.Hour)))
	default:
		f.t.Errorf("unexpected path %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func authenticate(t *testing.T, steam *fakeSteam) (*WebSession, *httptest.Server) {
	server := httptest.NewServer(steam)
	t.Cleanup(server.Close)

	account, err := NewAccount("giftbot", "hunter2", "c2hhcmVk", "aWRlbnRpdHk=")
	require.NoError(t, err)

	session, err := account.Authenticate(context.Background(), SessionOptions{
		BaseURL:      server.URL,
		CommunityURL: server.URL,
	})
	require.NoError(t, err)
	return session, server
}

func newFakeSteam(t *testing.T) *fakeSteam {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &fakeSteam{t: t, key: key}
}

func TestAuthenticate(t *testing.T) {
	rq := require.New(t)

	steam := newFakeSteam(t)
	steam.pollsEmpty = 1
	session, server := authenticate(t, steam)

	rq.Equal(int32(2), steam.polls.Load())
	rq.Equal(steamid.FromAccountID(22202), session.SteamId())

	sessionId, err := session.SessionId()
	rq.NoError(err)
	rq.Len(sessionId, 24)

	serverURL, err := url.Parse(server.URL + "/")
	rq.NoError(err)

	var loginCookie string
	for _, cookie := range session.Transport().CookieJar().Cookies(serverURL) {
		if cookie.Name == "steamLoginSecure" {
			loginCookie = cookie.Value
		}
	}
	unescaped, err := url.QueryUnescape(loginCookie)
	rq.NoError(err)
	rq.True(strings.HasPrefix(unescaped, testSteamID+"||"))

	rq.NotNil(session.TradeOfferClient())
	rq.NotNil(session.EconClient())
	rq.NotNil(session.CommunityClient())
	rq.NotNil(session.MobileConfClient())
	rq.NotNil(session.MarketClient())
	rq.Equal(server.URL, session.TradeOfferClient().BaseURL)
}

func TestRefreshKeepsSessionId(t *testing.T) {
	rq := require.New(t)

	steam := newFakeSteam(t)
	session, _ := authenticate(t, steam)

	before, err := session.SessionId()
	rq.NoError(err)
	expiresBefore := session.accessExpiresAt

	rq.NoError(session.refresh(context.Background()))
	rq.Equal(int32(1), steam.refreshes.Load())

	after, err := session.SessionId()
	rq.NoError(err)
	rq.Equal(before, after)
	rq.True(session.accessExpiresAt.After(expiresBefore))
}

func TestNextRefresh(t *testing.T) {
	rq := require.New(t)

	session := &WebSession{}
	now := time.Now()
	rq.Equal(defaultRefreshPeriod, session.nextRefresh(now))

	session.accessExpiresAt = now.Add(time.Hour)
	rq.Equal(55*time.Minute, session.nextRefresh(now))

	session.accessExpiresAt = now.Add(time.Minute)
	rq.Equal(refreshRetryPeriod, session.nextRefresh(now))
}

func TestKeepAliveStopsOnCancel(t *testing.T) {
	session := &WebSession{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		session.KeepAlive(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("KeepAlive did not return after cancel")
	}
}
