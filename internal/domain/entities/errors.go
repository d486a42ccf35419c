package entities

import (
	"errors"
	"regexp"
	"strings"
)

type ErrorKind string

const (
	KindNoRouteFound            ErrorKind = "no_route_found"
	KindOracleTransport         ErrorKind = "oracle_transport_error"
	KindOnchainSimulation       ErrorKind = "onchain_simulation_error"
	KindUnsupportedWrapConfig   ErrorKind = "unsupported_wrap_configuration"
	KindApprovalRejectedFailed  ErrorKind = "approval_rejected_or_failed"
	KindTransactionRejectFailed ErrorKind = "transaction_rejected_or_failed"
)

// SwapError is an error of the swap pipeline tagged with its kind
type SwapError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *SwapError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *SwapError) Unwrap() error {
	return e.Err
}

// Is matches any SwapError of the same kind, so the sentinels below work with errors.Is
func (e *SwapError) Is(target error) bool {
	t, ok := target.(*SwapError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

var (
	ErrNoRouteFound                 = &SwapError{Kind: KindNoRouteFound}
	ErrOracleTransport              = &SwapError{Kind: KindOracleTransport}
	ErrOnchainSimulation            = &SwapError{Kind: KindOnchainSimulation}
	ErrUnsupportedWrapConfiguration = &SwapError{Kind: KindUnsupportedWrapConfig}
	ErrApprovalRejectedOrFailed     = &SwapError{Kind: KindApprovalRejectedFailed}
	ErrTransactionRejectedOrFailed  = &SwapError{Kind: KindTransactionRejectFailed}
)

func NewSwapError(kind ErrorKind, message string, err error) *SwapError {
	return &SwapError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first SwapError in the chain
func KindOf(err error) (ErrorKind, bool) {
	var se *SwapError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// NoPathMessage is the oracle message for a request with no viable path
const NoPathMessage = "Must contain at least 1 path"

const (
	noLiquidityMessage  = "Not enough liquidity: your swap amount is too high to find a route through the available liquidity. Try reducing your swap size."
	networkErrorMessage = "A network error happened while fetching the swap. Please check your connection and try again."
	amountTooSmallMsg   = "Your input is too small, please try a bigger amount."
)

var wrapAmountTooSmall = regexp.MustCompile(`WrapAmountTooSmall`)

// UserMessage maps a pipeline error to the message shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case errors.Is(err, ErrNoRouteFound), strings.Contains(msg, NoPathMessage):
		return noLiquidityMessage
	case errors.Is(err, ErrOracleTransport):
		return networkErrorMessage
	case wrapAmountTooSmall.MatchString(msg):
		return amountTooSmallMsg
	}
	return msg
}
