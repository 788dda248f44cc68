package bot

import (
	"context"
	"sync"

	"github.com/escrow-tf/giftbot/api/econ"
	"github.com/escrow-tf/giftbot/api/tradeoffer"
	"github.com/escrow-tf/giftbot/notify"
	"github.com/escrow-tf/giftbot/pricing"
	"github.com/escrow-tf/giftbot/steamid"
	"github.com/escrow-tf/giftbot/trade"
)

type fakeTrades struct {
	mu              sync.Mutex
	accepted        []uint64
	declined        []uint64
	acceptErr       error
	declineErr      error
	needsMobileConf bool
}

func (f *fakeTrades) Accept(_ context.Context, id uint64, _ steamid.SteamID) (*tradeoffer.AcceptResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	f.accepted = append(f.accepted, id)
	return &tradeoffer.AcceptResponse{NeedsMobileConfirmation: f.needsMobileConf}, nil
}

func (f *fakeTrades) Decline(_ context.Context, id uint64) (*tradeoffer.ActionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.declineErr != nil {
		return nil, f.declineErr
	}
	f.declined = append(f.declined, id)
	return &tradeoffer.ActionResponse{TradeOfferId: id}, nil
}

type fakeComments struct {
	profiles []steamid.SteamID
	comments []string
	err      error
}

func (f *fakeComments) PostComment(_ context.Context, profile steamid.SteamID, comment string) error {
	f.profiles = append(f.profiles, profile)
	f.comments = append(f.comments, comment)
	return f.err
}

type fakeConfirmer struct {
	confirmed []uint64
}

func (f *fakeConfirmer) ConfirmTradeOffer(_ context.Context, offerId uint64) error {
	f.confirmed = append(f.confirmed, offerId)
	return nil
}

type tableQuoter map[string]string

func (q tableQuoter) Quote(_ context.Context, _ uint32, marketHashName string) pricing.Quote {
	if text, ok := q[marketHashName]; ok {
		return pricing.ParseQuote(text)
	}
	return pricing.UnavailableQuote()
}

type recordingDispatcher struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (r *recordingDispatcher) Dispatch(_ context.Context, message notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return r.err
}

type panickingClassifier struct{}

func (panickingClassifier) Classify(trade.Offer) trade.Decision {
	panic("corrupt offer")
}

type recordingMetrics struct {
	mu       sync.Mutex
	offers   []string
	failures []string
	lookups  []string
	notified []bool
}

func (m *recordingMetrics) OfferHandled(decision string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers = append(m.offers, decision)
}

func (m *recordingMetrics) ActionFailed(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, action)
}

func (m *recordingMetrics) PriceLookedUp(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, status)
}

func (m *recordingMetrics) Notified(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, success)
}

type fakeSource struct {
	mu        sync.Mutex
	responses []*econ.GetTradeOffersResponse
	err       error
	calls     int
}

func (f *fakeSource) GetTradeOffers(context.Context, econ.GetTradeOffersOptions) (*econ.GetTradeOffersResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &econ.GetTradeOffersResponse{}, nil
	}
	response := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return response, nil
}
