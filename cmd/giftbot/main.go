package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/escrow-tf/giftbot"
	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/api/discord"
	"github.com/escrow-tf/giftbot/bot"
	"github.com/escrow-tf/giftbot/config"
	"github.com/escrow-tf/giftbot/logx"
	"github.com/escrow-tf/giftbot/metrics"
	"github.com/escrow-tf/giftbot/notify"
	"github.com/escrow-tf/giftbot/pricing"
	"github.com/escrow-tf/giftbot/trade"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("giftbot stopped", logx.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "config.Load")
	}

	logger := logx.New(os.Stdout, cfg.Level())
	slog.SetDefault(logger)
	ctx = logx.WithLogger(ctx, logger)

	admin, err := cfg.AdminSteamID()
	if err != nil {
		return err
	}
	if admin.IsZero() {
		logger.WarnContext(ctx, "no administrator configured, admin offers are treated like any other")
	}

	account, err := giftbot.NewAccount(
		cfg.Steam.AccountName,
		cfg.Steam.Password,
		cfg.Steam.SharedSecret,
		cfg.Steam.IdentitySecret,
	)
	if err != nil {
		return err
	}

	session, err := account.Authenticate(ctx, giftbot.SessionOptions{
		WebApiKey: cfg.Steam.WebApiKey,
		Logger:    logger,
	})
	if err != nil {
		return eris.Wrap(err, "steam login failed")
	}
	logger.InfoContext(ctx, "logged in to steam", slog.String("steamid", session.SteamId().String()))

	dispatcher, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	var confirmations bot.Confirmer
	if account.TotpState().HasIdentitySecret() {
		confirmations = session.MobileConfClient()
	}

	policy := trade.NewPolicy(admin, cfg.Bot.AcceptedGames)
	processor := bot.NewProcessor(bot.ProcessorOptions{
		Classifier:      policy,
		Trades:          session.TradeOfferClient(),
		Pricer:          pricing.NewValuator(pricing.NewMarketQuoter(session.MarketClient(), cfg.Bot.PriceLookupTimeout)),
		Formatter:       notify.NewFormatter(policy),
		Dispatcher:      dispatcher,
		Comments:        session.CommunityClient(),
		Confirmations:   confirmations,
		ThankYouComment: cfg.Bot.ThankYouComment,
		Metrics:         recorder,
	})

	poller := bot.NewPoller(session.EconClient(), cfg.Bot.PollInterval)
	runner := bot.NewRunner(processor, cfg.Bot.Workers)
	offers := make(chan trade.Offer)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poller.Run(ctx, offers)
	})

	g.Go(func() error {
		return runner.Run(ctx, offers)
	})

	g.Go(func() error {
		session.KeepAlive(ctx)
		return nil
	})

	if cfg.MetricsAddr != "" {
		server := metrics.NewServer(cfg.MetricsAddr, registry)
		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	logger.InfoContext(ctx, "watching for trade offers",
		slog.Duration("poll_interval", cfg.Bot.PollInterval),
		slog.Int("workers", cfg.Bot.Workers),
	)

	return g.Wait()
}

func newDispatcher(cfg config.Config, logger *slog.Logger) (notify.Dispatcher, error) {
	webhookTransport := api.NewTransport(api.HttpTransportOptions{Logger: logger})
	dispatchers := notify.Multi{
		notify.NewDiscord(
			discord.NewClient(webhookTransport),
			cfg.Discord.WebhookURL,
			cfg.Discord.BotName,
			cfg.Discord.BotAvatar,
		),
	}

	if cfg.Telegram.Enabled() {
		telegram, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, eris.Wrap(err, "telegram notifier")
		}
		dispatchers = append(dispatchers, telegram)
	}

	return dispatchers, nil
}
