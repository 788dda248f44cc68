package trade

type Decision int

const (
	DeclineNotGift Decision = iota
	DeclineUnsupportedGame
	AcceptAsGift
	AcceptAsAdmin
)

func (d Decision) Accepts() bool {
	return d == AcceptAsGift || d == AcceptAsAdmin
}

func (d Decision) String() string {
	switch d {
	case AcceptAsAdmin:
		return "accept-admin"
	case AcceptAsGift:
		return "accept-gift"
	case DeclineNotGift:
		return "decline-not-gift"
	case DeclineUnsupportedGame:
		return "decline-unsupported-game"
	default:
		return "unknown"
	}
}
