package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	accountdomain "github.com/tvorai/creditgate/internal/account/domain"
	"github.com/tvorai/creditgate/internal/auth"
	ledgerdomain "github.com/tvorai/creditgate/internal/ledger/domain"
	"github.com/tvorai/creditgate/internal/pricing"
	"github.com/tvorai/creditgate/internal/providers"
	subscriptiondomain "github.com/tvorai/creditgate/internal/subscription/domain"
)

// Wire error tokens. The frontend branches on these strings, so they are
// part of the public contract and must never change.
const (
	tokenMissingFields        = "MISSING_FIELDS"
	tokenUnknownFeatureType   = "UNKNOWN_FEATURE_TYPE"
	tokenAccountNotFound      = "ACCOUNT_NOT_FOUND"
	tokenNoActiveSubscription = "NO_ACTIVE_SUBSCRIPTION"
	tokenNoBalanceRecord      = "NO_BALANCE_RECORD"
	tokenInsufficientCredits  = "INSUFFICIENT_CREDITS"
	tokenTxFailed             = "TX_FAILED"
	tokenServerError          = "SERVER_ERROR"
	tokenBadSignature         = "bad_signature"
	tokenProviderUnavailable  = "PROVIDER_UNAVAILABLE"
	tokenProviderError        = "PROVIDER_ERROR"
	tokenBadRequest           = "BAD_REQUEST"
)

// ErrMissingFields is raised by handlers before any service call when a
// required request field is absent or malformed.
var ErrMissingFields = errors.New("missing_fields")

// detailedError attaches a human-readable details string to a sentinel so
// 400-class answers can explain which field was bad.
type detailedError struct {
	err     error
	details string
}

func (e *detailedError) Error() string { return e.err.Error() + ": " + e.details }
func (e *detailedError) Unwrap() error { return e.err }

func withDetails(err error, details string) error {
	return &detailedError{err: err, details: details}
}

// ErrorHandlingMiddleware turns errors recorded on the gin context into the
// flat {"error": "TOKEN"} wire shape after the handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, token := mapError(lastErr.Err)

		payload := gin.H{"error": token}
		if status == http.StatusBadRequest {
			var dErr *detailedError
			if errors.As(lastErr.Err, &dErr) {
				payload["details"] = dErr.details
			}
		}
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, subscriptiondomain.ErrInvalidPlan),
		errors.Is(err, subscriptiondomain.ErrInvalidCreditLimit),
		errors.Is(err, subscriptiondomain.ErrInvalidCycle),
		errors.Is(err, accountdomain.ErrInvalidExternalID),
		errors.Is(err, ledgerdomain.ErrInvalidCost):
		return http.StatusBadRequest, tokenMissingFields
	case errors.Is(err, pricing.ErrFeatureUnknown):
		return http.StatusBadRequest, tokenUnknownFeatureType
	case errors.Is(err, accountdomain.ErrNotFound):
		return http.StatusBadRequest, tokenAccountNotFound
	case errors.Is(err, subscriptiondomain.ErrNoActiveSubscription):
		return http.StatusForbidden, tokenNoActiveSubscription
	case errors.Is(err, subscriptiondomain.ErrNoBalanceRecord),
		errors.Is(err, ledgerdomain.ErrBalanceMissing):
		return http.StatusBadRequest, tokenNoBalanceRecord
	case errors.Is(err, ledgerdomain.ErrInsufficientCredits):
		return http.StatusPaymentRequired, tokenInsufficientCredits
	case errors.Is(err, ledgerdomain.ErrTransactionFailed):
		return http.StatusInternalServerError, tokenTxFailed
	case isBadSignature(err):
		return http.StatusUnauthorized, tokenBadSignature
	case errors.Is(err, providers.ErrUnavailable):
		return http.StatusServiceUnavailable, tokenProviderUnavailable
	case errors.Is(err, providers.ErrNotConfigured):
		return http.StatusNotImplemented, tokenProviderError
	case isProviderValidation(err):
		return http.StatusBadRequest, tokenBadRequest
	case isUpstreamError(err):
		return http.StatusBadGateway, tokenProviderError
	default:
		return http.StatusInternalServerError, tokenServerError
	}
}

// classifyErrorForLog labels the request log line with the wire token.
func classifyErrorForLog(err error) string {
	_, token := mapError(err)
	return token
}

func isUpstreamError(err error) bool {
	var uErr *providers.UpstreamError
	return errors.As(err, &uErr)
}

func isProviderValidation(err error) bool {
	return errors.Is(err, providers.ErrBadDuration) ||
		errors.Is(err, providers.ErrBadAspect) ||
		errors.Is(err, providers.ErrMissingAdFields)
}

func isBadSignature(err error) bool {
	// auth.ErrNotConfigured falls through to SERVER_ERROR: a missing shared
	// secret is an operator fault, not a caller fault.
	return errors.Is(err, auth.ErrBadSignature)
}
