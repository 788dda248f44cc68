package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escrow-tf/giftbot/steamlang"
)

type testRequest struct {
	method    string
	url       string
	values    url.Values
	retryable bool
	apiKey    bool
}

func (r testRequest) Retryable() bool { return r.retryable }
func (r testRequest) RequiresApiKey() bool { return r.apiKey }
func (r testRequest) Method() string { return r.method }
func (r testRequest) Url() string { return r.url }
func (r testRequest) Values() (url.Values, error) { return r.values, nil }
func (r testRequest) Headers() (http.Header, error) { return http.Header{"Referer": []string{"https://example.test/"}}, nil }
func (r testRequest) EnsureResponseSuccess(resp *http.Response) error {
	return steamlang.EnsureSuccessResponse(resp)
}

type testJsonRequest struct {
	testRequest
	body any
}

func (r testJsonRequest) JsonBody() (any, error) { return r.body, nil }

func TestSendGetAppendsValuesAndApiKey(t *testing.T) {
	rq := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rq.Equal(http.MethodGet, r.Method)
		rq.Equal("secret", r.URL.Query().Get("key"))
		rq.Equal("730", r.URL.Query().Get("appid"))
		rq.Equal("https://example.test/", r.Header.Get("Referer"))
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	transport := NewTransport(HttpTransportOptions{WebApiKey: "secret"})

	var response struct {
		Success bool `json:"success"`
	}
	err := transport.Send(context.Background(), testRequest{
		method: http.MethodGet,
		url:    server.URL + "/path",
		values: url.Values{"appid": []string{"730"}},
		apiKey: true,
	}, &response)

	rq.NoError(err)
	rq.True(response.Success)
}

func TestSendPostEncodesForm(t *testing.T) {
	rq := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rq.Equal(http.MethodPost, r.Method)
		rq.Equal(FormContentType, r.Header.Get("Content-Type"))
		rq.NoError(r.ParseForm())
		rq.Equal("abc", r.PostForm.Get("sessionid"))
		rq.Empty(r.URL.Query().Get("key"))
	}))
	defer server.Close()

	transport := NewTransport(HttpTransportOptions{WebApiKey: "secret"})
	err := transport.Send(context.Background(), testRequest{
		method: http.MethodPost,
		url:    server.URL,
		values: url.Values{"sessionid": []string{"abc"}},
	}, nil)

	rq.NoError(err)
}

func TestSendJsonBody(t *testing.T) {
	rq := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rq.Equal(JsonContentType, r.Header.Get("Content-Type"))
		rq.Equal("true", r.URL.Query().Get("wait"))
		body, err := io.ReadAll(r.Body)
		rq.NoError(err)
		rq.JSONEq(`{"username":"bot"}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	transport := NewTransport(HttpTransportOptions{})
	err := transport.Send(context.Background(), testJsonRequest{
		testRequest: testRequest{
			method: http.MethodPost,
			url:    server.URL,
			values: url.Values{"wait": []string{"true"}},
		},
		body: map[string]string{"username": "bot"},
	}, nil)

	rq.NoError(err)
}

func TestSendReportsFailureStatus(t *testing.T) {
	rq := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	transport := NewTransport(HttpTransportOptions{})
	err := transport.Send(context.Background(), testRequest{method: http.MethodGet, url: server.URL}, nil)

	rq.Error(err)
}

func TestSendReportsEResult(t *testing.T) {
	rq := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Eresult", "15")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	transport := NewTransport(HttpTransportOptions{})
	err := transport.Send(context.Background(), testRequest{method: http.MethodGet, url: server.URL}, &struct{}{})

	rq.Error(err)
}

func TestAppendQuery(t *testing.T) {
	rq := require.New(t)

	rq.Equal("https://a/b", appendQuery("https://a/b", nil))
	rq.Equal("https://a/b?x=1", appendQuery("https://a/b", url.Values{"x": []string{"1"}}))
	rq.Equal("https://a/b?y=2&x=1", appendQuery("https://a/b?y=2", url.Values{"x": []string{"1"}}))
}
