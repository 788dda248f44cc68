package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/escrow-tf/giftbot/api/community"
	"github.com/escrow-tf/giftbot/api/tradeoffer"
	"github.com/escrow-tf/giftbot/logx"
	"github.com/escrow-tf/giftbot/notify"
	"github.com/escrow-tf/giftbot/pricing"
	"github.com/escrow-tf/giftbot/trade"
)

const (
	actionAccept  = "accept"
	actionDecline = "decline"
)

type State int

const (
	// Unresolved means the accept or decline call failed; the offer stays pending on Steam.
	Unresolved State = iota
	Declined
	NotificationSent
	NotificationFailed
)

func (s State) String() string {
	switch s {
	case Declined:
		return "declined"
	case NotificationSent:
		return "notification-sent"
	case NotificationFailed:
		return "notification-failed"
	default:
		return "unresolved"
	}
}

// Outcome is the final state of one offer.
type Outcome struct {
	OfferID  uint64
	Decision trade.Decision
	State    State
	// Fallback is set when classification failed and the offer was declined instead.
	Fallback bool
	Message  *notify.Message
	Err      error
}

type Classifier interface {
	Classify(offer trade.Offer) trade.Decision
}

type Pricer interface {
	PriceItems(ctx context.Context, items []trade.Item) []pricing.PricedItem
}

type Confirmer interface {
	ConfirmTradeOffer(ctx context.Context, offerId uint64) error
}

type Metrics interface {
	OfferHandled(decision string)
	ActionFailed(action string)
	PriceLookedUp(status string)
	Notified(success bool)
}

type ProcessorOptions struct {
	Classifier Classifier
	Trades     tradeoffer.Api
	Pricer     Pricer
	Formatter  notify.Formatter
	Dispatcher notify.Dispatcher

	// Optional.
	Comments        community.Api
	Confirmations   Confirmer
	ThankYouComment string
	Metrics         Metrics
	Now             func() time.Time
}

type Processor struct {
	options ProcessorOptions
}

func NewProcessor(options ProcessorOptions) *Processor {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Metrics == nil {
		options.Metrics = noopMetrics{}
	}
	return &Processor{options: options}
}

// Handle classifies offer, acts on it and, when it was accepted, sends the
// notification. Failures are logged and reported in the Outcome, never returned.
func (p *Processor) Handle(ctx context.Context, offer trade.Offer) Outcome {
	logger := logx.FromContext(ctx).With(
		slog.Uint64(logx.FieldOfferID, offer.ID),
		slog.String(logx.FieldPartner, offer.Partner.String()),
	)
	ctx = logx.WithLogger(ctx, logger)

	decision, fallback := p.classify(ctx, offer)
	outcome := Outcome{
		OfferID:  offer.ID,
		Decision: decision,
		Fallback: fallback,
	}
	p.options.Metrics.OfferHandled(decision.String())

	if decision == trade.AcceptAsAdmin {
		logger.WarnContext(ctx, "accepting administrator offer without gift checks",
			slog.Int(logx.FieldItemsToGive, len(offer.ItemsToGive)),
			slog.Int(logx.FieldItems, len(offer.ItemsToReceive)),
		)
	}

	if !decision.Accepts() {
		return p.decline(ctx, offer, outcome)
	}

	return p.accept(ctx, offer, outcome)
}

func (p *Processor) classify(ctx context.Context, offer trade.Offer) (decision trade.Decision, fallback bool) {
	defer func() {
		if r := recover(); r != nil {
			logx.FromContext(ctx).ErrorContext(ctx, "offer classification failed, declining",
				slog.String(logx.FieldError, fmt.Sprint(r)),
			)
			decision, fallback = trade.DeclineNotGift, true
		}
	}()

	return p.options.Classifier.Classify(offer), false
}

func (p *Processor) decline(ctx context.Context, offer trade.Offer, outcome Outcome) Outcome {
	logger := logx.FromContext(ctx)

	if _, err := p.options.Trades.Decline(ctx, offer.ID); err != nil {
		logger.ErrorContext(ctx, "error declining offer",
			slog.String(logx.FieldDecision, outcome.Decision.String()),
			logx.Error(err),
		)
		p.options.Metrics.ActionFailed(actionDecline)
		outcome.State = Unresolved
		outcome.Err = err
		return outcome
	}

	logger.InfoContext(ctx, "declined offer", slog.String(logx.FieldDecision, outcome.Decision.String()))
	outcome.State = Declined
	return outcome
}

func (p *Processor) accept(ctx context.Context, offer trade.Offer, outcome Outcome) Outcome {
	logger := logx.FromContext(ctx)

	response, err := p.options.Trades.Accept(ctx, offer.ID, offer.Partner)
	if err != nil {
		logger.ErrorContext(ctx, "error accepting offer",
			slog.String(logx.FieldDecision, outcome.Decision.String()),
			logx.Error(err),
		)
		p.options.Metrics.ActionFailed(actionAccept)
		outcome.State = Unresolved
		outcome.Err = err
		return outcome
	}

	logger.InfoContext(ctx, "accepted offer",
		slog.String(logx.FieldDecision, outcome.Decision.String()),
		slog.Int(logx.FieldItems, len(offer.ItemsToReceive)),
	)

	p.confirm(ctx, offer, outcome.Decision, response)
	p.thank(ctx, offer, outcome.Decision)

	priced := p.options.Pricer.PriceItems(ctx, offer.ItemsToReceive)
	for _, item := range priced {
		p.options.Metrics.PriceLookedUp(item.Quote.Status.String())
	}

	total := pricing.Total(pricing.Quotes(priced))
	message := p.options.Formatter.Format(offer, outcome.Decision, priced, total, p.options.Now())
	outcome.Message = &message

	if err = p.options.Dispatcher.Dispatch(ctx, message); err != nil {
		logger.ErrorContext(ctx, "error sending notification", logx.Error(err))
		p.options.Metrics.Notified(false)
		outcome.State = NotificationFailed
		outcome.Err = err
		return outcome
	}

	p.options.Metrics.Notified(true)
	outcome.State = NotificationSent
	return outcome
}

// confirm approves the mobile confirmation Steam asks for when an
// administrator offer takes items out of the bot's inventory.
func (p *Processor) confirm(
	ctx context.Context,
	offer trade.Offer,
	decision trade.Decision,
	response *tradeoffer.AcceptResponse,
) {
	if decision != trade.AcceptAsAdmin || response == nil || !response.NeedsMobileConfirmation {
		return
	}

	logger := logx.FromContext(ctx)
	if p.options.Confirmations == nil {
		logger.WarnContext(ctx, "offer needs mobile confirmation but no identity secret is configured")
		return
	}

	if err := p.options.Confirmations.ConfirmTradeOffer(ctx, offer.ID); err != nil {
		logger.ErrorContext(ctx, "error confirming offer", logx.Error(err))
		p.options.Metrics.ActionFailed("confirm")
		return
	}

	logger.InfoContext(ctx, "confirmed offer")
}

func (p *Processor) thank(ctx context.Context, offer trade.Offer, decision trade.Decision) {
	if decision != trade.AcceptAsGift || p.options.Comments == nil || p.options.ThankYouComment == "" {
		return
	}

	if err := p.options.Comments.PostComment(ctx, offer.Partner, p.options.ThankYouComment); err != nil {
		logx.FromContext(ctx).WarnContext(ctx, "error posting thank-you comment", logx.Error(err))
		p.options.Metrics.ActionFailed("comment")
	}
}

type noopMetrics struct{}

func (noopMetrics) OfferHandled(string)  {}
func (noopMetrics) ActionFailed(string)  {}
func (noopMetrics) PriceLookedUp(string) {}
func (noopMetrics) Notified(bool)        {}
