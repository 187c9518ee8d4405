package types

import (
	"errors"
	"fmt"
)

// RejectionKind separates "fix your input" from "you may not do this"
// from "not in a state where this is possible" from "come back later"
// from "the processor failed".
type RejectionKind string

const (
	REJECT_VALIDATION    RejectionKind = "validation"
	REJECT_AUTHORIZATION RejectionKind = "authorization"
	REJECT_PRECONDITION  RejectionKind = "precondition"
	REJECT_DEFERRAL      RejectionKind = "deferral"
	REJECT_PROVIDER      RejectionKind = "provider"
)

// Rejection is the typed failure every settlement operation returns.
// Deferrals carry the processor's available_on timestamp; precondition
// failures carry the current and required states so callers can explain
// the refusal to a human.
type Rejection struct {
	Kind          RejectionKind `json:"kind"`
	Message       string        `json:"message"`
	CurrentState  string        `json:"current_state,omitempty"`
	RequiredState string        `json:"required_state,omitempty"`
	AvailableOn   int64         `json:"available_on,omitempty"`
	ProviderCode  string        `json:"provider_code,omitempty"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

func NewValidationError(msg string) *Rejection {
	return &Rejection{Kind: REJECT_VALIDATION, Message: msg}
}

func NewAuthorizationError(msg string) *Rejection {
	return &Rejection{Kind: REJECT_AUTHORIZATION, Message: msg}
}

func NewPreconditionError(msg, current, required string) *Rejection {
	return &Rejection{
		Kind:          REJECT_PRECONDITION,
		Message:       msg,
		CurrentState:  current,
		RequiredState: required,
	}
}

// NewDeferralError reports funds not yet available. It is a business-rule
// deferral, not a hard failure: availableOn tells the caller when to retry.
func NewDeferralError(availableOn int64) *Rejection {
	return &Rejection{
		Kind:        REJECT_DEFERRAL,
		Message:     "funds are not yet available for payout",
		AvailableOn: availableOn,
	}
}

// NewProviderError preserves the processor's own code and message verbatim.
func NewProviderError(code, msg string) *Rejection {
	return &Rejection{Kind: REJECT_PROVIDER, Message: msg, ProviderCode: code}
}

// AsRejection unwraps err into a *Rejection when one is in the chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	ok := errors.As(err, &r)
	return r, ok
}
