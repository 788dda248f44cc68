package steamlang

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
)

type EResult int

// Only the results the trade offer and confirmation endpoints are known to
// return are listed here.
const (
	InvalidResult                    EResult = 0
	OKResult                         EResult = 1
	FailResult                       EResult = 2
	NoConnectionResult               EResult = 3
	InvalidPasswordResult            EResult = 5
	InvalidParamResult               EResult = 8
	BusyResult                       EResult = 10
	InvalidStateResult               EResult = 11
	AccessDeniedResult               EResult = 15
	TimeoutResult                    EResult = 16
	ServiceUnavailableResult         EResult = 20
	NotLoggedOnResult                EResult = 21
	LimitExceededResult              EResult = 25
	RevokedResult                    EResult = 26
	ExpiredResult                    EResult = 27
	AlreadyRedeemedResult            EResult = 28
	RateLimitExceededResult          EResult = 84
	TwoFactorCodeMismatchResult      EResult = 88
	AccountLoginDeniedThrottleResult EResult = 87
	TimeNotSyncedResult              EResult = 93
)

var trailingCode = regexp.MustCompile(`\((\d+)\)\s*$`)

func EnsureSuccessResponse(response *http.Response) error {
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return eris.Errorf("steam request failed with status %v", response.StatusCode)
	}

	return nil
}

func EnsureEResultResponse(httpResponse *http.Response) error {
	eResult := InvalidResult
	eResults, hasEResult := httpResponse.Header["X-Eresult"]
	if !hasEResult {
		return nil
	}

	for _, result := range eResults {
		if parsedResult, parseErr := strconv.ParseInt(result, 10, 64); parseErr == nil {
			eResult = EResult(parsedResult)
			break
		}
	}

	if eResult != OKResult {
		if errorMessageHeaders, ok := httpResponse.Header["X-Error_message"]; ok {
			errorMessages := make([]error, len(errorMessageHeaders))
			for i, header := range errorMessageHeaders {
				errorMessages[i] = errors.New(header)
			}

			return eris.Errorf("steam responded with non-OK Result: %v, %v", eResult, errors.Join(errorMessages...))
		}

		return eris.Errorf("steam responded with non-OK Result: %v", eResult)
	}

	return nil
}

// ParseErrorCode extracts the EResult steamcommunity.com appends to
// human-readable error strings, e.g. "There was an error accepting this trade offer. (26)".
func ParseErrorCode(message string) (EResult, bool) {
	match := trailingCode.FindStringSubmatch(message)
	if match == nil {
		return InvalidResult, false
	}

	code, err := strconv.Atoi(match[1])
	if err != nil {
		return InvalidResult, false
	}

	return EResult(code), true
}
