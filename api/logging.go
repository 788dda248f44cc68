package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/xid"

	"github.com/escrow-tf/giftbot/logx"
)

// LoggingRoundTripper logs every outbound request at debug level with the
// logger found in the request context. Bodies are never logged since they
// carry session ids and tokens.
type LoggingRoundTripper struct {
	next http.RoundTripper
}

func NewLoggingRoundTripper(next http.RoundTripper) LoggingRoundTripper {
	return LoggingRoundTripper{next: next}
}

func (rt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	logger := logx.FromContext(ctx).With(
		slog.String(logx.FieldRequestID, xid.New().String()),
		slog.String(logx.FieldHTTPMethod, req.Method),
		slog.String(logx.FieldURL, req.URL.Scheme+"://"+req.URL.Host+req.URL.Path),
	)

	start := time.Now()

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		logger.DebugContext(ctx, "http request failed", logx.Error(err))
		return nil, eris.Wrap(err, "next.RoundTrip")
	}

	logger.DebugContext(
		ctx,
		"http request",
		slog.Int(logx.FieldResponseCode, resp.StatusCode),
		slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()),
	)

	return resp, nil
}
