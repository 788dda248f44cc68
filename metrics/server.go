package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/logx"
)

const httpServerReadHeaderTimeout = 5 * time.Second

type Server struct {
	listenAddress string
	gatherer      prometheus.Gatherer
}

func NewServer(listenAddress string, gatherer prometheus.Gatherer) Server {
	return Server{
		listenAddress: listenAddress,
		gatherer:      gatherer,
	}
}

func (s Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})
	return r
}

// Run serves until ctx is cancelled.
func (s Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.listenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		if err := httpServer.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logx.FromContext(ctx).Error("httpServer.Shutdown", logx.Error(err))
		}
	}()

	logx.FromContext(ctx).Info("metrics server started", slog.String("address", s.listenAddress))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "httpServer.ListenAndServe")
	}

	logx.FromContext(ctx).Info("metrics server stopped")

	return nil
}
