package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/logx"
	"github.com/escrow-tf/giftbot/steamlang"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

//goland:noinspection GoUnusedConst
const JsonContentType = "application/json"
const FormContentType = "application/x-www-form-urlencoded"

const BaseURL = "https://api.steampowered.com"
const CommunityURL = "https://steamcommunity.com"

const defaultTimeout = 30 * time.Second

type Request interface {
	Retryable() bool
	RequiresApiKey() bool
	Method() string
	Url() string
	Values() (url.Values, error)
	Headers() (http.Header, error)
	EnsureResponseSuccess(httpResponse *http.Response) error
}

// JsonBodyRequest is implemented by requests whose body is a JSON document
// instead of form values. Values are still appended to the query string.
type JsonBodyRequest interface {
	Request
	JsonBody() (any, error)
}

// SessionIdFunc returns the sessionid cookie of the logged-in web session.
// steamcommunity.com expects it echoed in every state-changing form post.
type SessionIdFunc func() (string, error)

type Transport interface {
	CookieJar() http.CookieJar
	Send(ctx context.Context, request Request, response any) error
	HttpClient() *http.Client
}

type HttpTransport struct {
	webApiKey   string
	client      *http.Client
	retryClient *retryablehttp.Client
}

type HttpTransportOptions struct {
	WebApiKey string
	Timeout   time.Duration
	Logger    *slog.Logger
}

func NewTransport(options HttpTransportOptions) *HttpTransport {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic("Failed to create cookie jar, which should never happen as cookiejar.New does not return any errors")
	}

	cookieUrl := &url.URL{Scheme: "https", Host: "steamcommunity.com", Path: "/"}
	jar.SetCookies(cookieUrl, []*http.Cookie{
		{
			Name:  "mobileClient",
			Value: "android",
		},
		{
			Name:  "mobileClientVersion",
			Value: "777777 3.0.0",
		},
	})

	timeout := options.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	httpClient := &http.Client{
		Transport: NewLoggingRoundTripper(cleanhttp.DefaultPooledTransport()),
		Jar:       jar,
		Timeout:   timeout,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.Logger = nil
	if options.Logger != nil {
		retryClient.Logger = options.Logger
	}

	return &HttpTransport{
		webApiKey:   options.WebApiKey,
		client:      httpClient,
		retryClient: retryClient,
	}
}

func (c HttpTransport) CookieJar() http.CookieJar {
	return c.client.Jar
}

// Send sends a specialized HTTP Request to steam and decodes the JSON answer
// into response, unless response is nil.
func (c HttpTransport) Send(ctx context.Context, request Request, response any) error {
	httpMethod := request.Method()

	requestValues, valuesErr := request.Values()
	if valuesErr != nil {
		return eris.Wrap(valuesErr, "error building request values")
	}

	requestUrl := request.Url()

	if request.RequiresApiKey() {
		if requestValues == nil {
			requestValues = make(url.Values)
		}
		requestValues.Add("key", c.webApiKey)
	}

	var httpBody io.Reader
	contentType := ""
	if jsonRequest, ok := request.(JsonBodyRequest); ok {
		body, bodyErr := jsonRequest.JsonBody()
		if bodyErr != nil {
			return eris.Wrap(bodyErr, "error building json body")
		}

		encoded, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return eris.Wrap(marshalErr, "error marshalling json body")
		}

		httpBody = bytes.NewReader(encoded)
		contentType = JsonContentType
		requestUrl = appendQuery(requestUrl, requestValues)
	} else if len(requestValues) > 0 {
		if httpMethod == http.MethodGet {
			requestUrl = appendQuery(requestUrl, requestValues)
		} else {
			httpBody = strings.NewReader(requestValues.Encode())
			contentType = FormContentType
		}
	}

	httpRequest, httpRequestErr := http.NewRequestWithContext(ctx, httpMethod, requestUrl, httpBody)
	if httpRequestErr != nil {
		return eris.Wrap(httpRequestErr, "error creating http request")
	}

	httpRequest.Header.Add("Accept", JsonContentType)
	httpRequest.Header.Add("User-Agent", "okhttp/3.12.12")
	if contentType != "" {
		httpRequest.Header.Add("Content-Type", contentType)
	}

	headers, headersErr := request.Headers()
	if headersErr != nil {
		return eris.Wrap(headersErr, "error building request headers")
	}

	for headerKey, headerValues := range headers {
		for _, headerValue := range headerValues {
			httpRequest.Header.Add(headerKey, headerValue)
		}
	}

	httpClient := c.client
	if request.Retryable() {
		httpClient = c.retryClient.StandardClient()
	}

	httpResponse, httpResponseErr := httpClient.Do(httpRequest)
	if httpResponseErr != nil {
		return eris.Wrapf(httpResponseErr, "%s %s failed", httpMethod, httpRequest.URL.Path)
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logx.FromContext(ctx).Warn("error closing steam response body", logx.Error(err))
		}
	}(httpResponse.Body)

	if err := request.EnsureResponseSuccess(httpResponse); err != nil {
		return err
	}

	if err := steamlang.EnsureEResultResponse(httpResponse); err != nil {
		return err
	}

	if response != nil {
		responseBody, err := io.ReadAll(httpResponse.Body)
		if err != nil {
			return eris.Wrap(err, "couldn't read response")
		}

		err = json.Unmarshal(responseBody, response)
		if err != nil {
			return eris.Wrap(err, "couldn't unmarshal response")
		}
	}

	return nil
}

func (c HttpTransport) HttpClient() *http.Client {
	return c.client
}

func appendQuery(requestUrl string, values url.Values) string {
	if len(values) == 0 {
		return requestUrl
	}

	separator := "?"
	if strings.Contains(requestUrl, "?") {
		separator = "&"
	}

	return requestUrl + separator + values.Encode()
}
