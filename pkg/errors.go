package pkg

import (
	"errors"
	"fmt"
)

// Sentinel errors for the quote and assembly paths. Callers match with
// errors.Is.
var (
	// ErrInsufficientLiquidityData is returned when a concentrated-pool
	// quote would have to walk past the last loaded tick array. The quote
	// is never extrapolated.
	ErrInsufficientLiquidityData = errors.New("insufficient liquidity data for requested amount")

	// ErrInvalidSlippage is returned for slippage tolerances of 100% or
	// more (>= 10000 bps).
	ErrInvalidSlippage = errors.New("invalid slippage tolerance")

	// ErrMissingPoolKeys is returned when the pool key set is incomplete
	// for the pool's type.
	ErrMissingPoolKeys = errors.New("missing pool keys")

	// ErrUnsupportedMintPair is returned when the requested input mint is
	// not one of the pool's two mints.
	ErrUnsupportedMintPair = errors.New("unsupported mint pair")

	// ErrPlanTooLarge is returned when the assembled transaction exceeds
	// the serialized packet size limit.
	ErrPlanTooLarge = errors.New("swap plan exceeds transaction size limit")
)

// DiscoveryError wraps failures of the pool catalog HTTP API: transport
// errors, non-2xx responses and malformed bodies.
type DiscoveryError struct {
	Endpoint string
	Status   int // 0 when the request never got a response
	Err      error
}

func (e *DiscoveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("pool discovery %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("pool discovery %s: %v", e.Endpoint, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// StateReadError wraps account decode failures: wrong owner, wrong size,
// wrong discriminator, or a missing account. RPC transport failures are not
// StateReadErrors; they pass through wrapped.
type StateReadError struct {
	Account string
	Err     error
}

func (e *StateReadError) Error() string {
	return fmt.Sprintf("read account %s: %v", e.Account, e.Err)
}

func (e *StateReadError) Unwrap() error { return e.Err }

// SubmissionError wraps a failed transaction or bundle submission.
type SubmissionError struct {
	Signature string // empty when the transaction was never accepted
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Signature != "" {
		return fmt.Sprintf("submit transaction %s: %v", e.Signature, e.Err)
	}
	return fmt.Sprintf("submit transaction: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
