package tradeoffer

import (
	"errors"

	"github.com/escrow-tf/giftbot/steamlang"
)

var (
	ErrInvalidState       = errors.New("this trade offer is in an invalid state, and cannot be acted upon")
	ErrAccessDenied       = errors.New("you can't accept this trade offer because you can't trade with the other user or one of the items can't be traded")
	ErrTimeout            = errors.New("the trade offers server did not reply in time; it is possible that the operation actually succeeded")
	ErrServiceUnavailable = errors.New("the trade offers service is currently unavailable")
	ErrTooManyTradeOffers = errors.New("you are exceeding your limit of active offers")
	ErrItemsDontExist     = errors.New("one or more of the items in this trade offer no longer exists in the inventory it was requested from")
	ErrNotLoggedOn        = errors.New("the web session is not logged on")
)

// ErrorForResult maps the EResult steamcommunity.com appends to trade offer
// errors onto one of the sentinel errors above.
func ErrorForResult(result steamlang.EResult) error {
	switch result {
	case steamlang.InvalidStateResult:
		return ErrInvalidState
	case steamlang.AccessDeniedResult:
		return ErrAccessDenied
	case steamlang.TimeoutResult:
		return ErrTimeout
	case steamlang.ServiceUnavailableResult:
		return ErrServiceUnavailable
	case steamlang.LimitExceededResult:
		return ErrTooManyTradeOffers
	case steamlang.RevokedResult:
		return ErrItemsDontExist
	case steamlang.NotLoggedOnResult:
		return ErrNotLoggedOn
	default:
		return nil
	}
}
