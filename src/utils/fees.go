package utils

import (
	"math"
	"strings"

	"github.com/SrZeh/get-useapp-sub002/src/config"
	"github.com/SrZeh/get-useapp-sub002/src/types"
)

// FeeParams carries the fee rates for one computation. Callers start
// from DefaultFeeParams and override what they need; the values are
// applied exactly as given.
type FeeParams struct {
	ServicePct       float64
	StripePct        float64
	StripeFixedCents int64
}

func DefaultFeeParams() FeeParams {
	return FeeParams{
		ServicePct:       config.SERVICE_FEE_PCT,
		StripePct:        config.STRIPE_PCT,
		StripeFixedCents: config.STRIPE_FIXED_FEE_CENTS,
	}
}

// RoundHalfAway rounds half away from zero to the nearest integer cent.
func RoundHalfAway(x float64) int64 {
	if x < 0 {
		return -int64(math.Floor(-x + 0.5))
	}
	return int64(math.Floor(x + 0.5))
}

// ComputeFees turns a rental's base price into its fee breakdown.
// Every step rounds independently, in this exact order. The sum of the
// independently rounded owner payout and app fee can differ from a
// re-derived total by a cent; that is the contract, not a bug. Callers
// must reject negative input before calling.
func ComputeFees(baseCents int64) types.FeeBreakdown {
	return ComputeFeesWith(baseCents, DefaultFeeParams())
}

func ComputeFeesWith(baseCents int64, p FeeParams) types.FeeBreakdown {
	serviceFee := RoundHalfAway(float64(baseCents) * p.ServicePct)
	basePlusService := baseCents + serviceFee
	stripePercentFee := RoundHalfAway(float64(basePlusService) * p.StripePct)
	surcharge := stripePercentFee + p.StripeFixedCents
	appFee := RoundHalfAway(float64(baseCents) * config.APP_FEE_PCT)
	ownerPayout := RoundHalfAway(float64(baseCents) * config.OWNER_PAYOUT_PCT)
	total := baseCents + serviceFee + surcharge

	return types.FeeBreakdown{
		BaseCents:        baseCents,
		ServiceFeeCents:  serviceFee,
		SurchargeCents:   surcharge,
		AppFeeCents:      appFee,
		OwnerPayoutCents: ownerPayout,
		TotalCents:       total,
	}
}

// ParseCents converts a display price string into integer centavos.
// Accepted grammar: an optional "R$" prefix, then digits with optional
// "." or "," separators where a separator followed by exactly two final
// digits is the decimal mark and separators followed by three digits are
// thousands groups. Anything else, including ambiguous strings like
// "1,23,4" and values past the int64 centavo range, is rejected rather
// than guessed at.
func ParseCents(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "R$")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, types.NewValidationError("empty amount")
	}

	intPart := raw
	fracPart := ""
	// Decimal mark: "," or "." followed by exactly two digits at the end.
	if len(raw) > 3 {
		sep := raw[len(raw)-3]
		if sep == ',' || sep == '.' {
			intPart = raw[:len(raw)-3]
			fracPart = raw[len(raw)-2:]
		}
	}
	if intPart == "" {
		return 0, types.NewValidationError("malformed amount: " + s)
	}

	// Integer part may carry thousands groups, always three digits wide.
	groups := strings.FieldsFunc(intPart, func(r rune) bool {
		return r == '.' || r == ','
	})
	grouped := strings.ContainsAny(intPart, ".,")
	var digits strings.Builder
	for i, g := range groups {
		if grouped && i > 0 && len(g) != 3 {
			return 0, types.NewValidationError("ambiguous amount: " + s)
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return 0, types.NewValidationError("malformed amount: " + s)
			}
			digits.WriteRune(r)
		}
	}

	var cents int64
	for _, r := range digits.String() {
		d := int64(r - '0')
		if cents > (math.MaxInt64-d)/10 {
			return 0, types.NewValidationError("amount too large: " + s)
		}
		cents = cents*10 + d
	}
	if cents > math.MaxInt64/100 {
		return 0, types.NewValidationError("amount too large: " + s)
	}
	cents *= 100
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return 0, types.NewValidationError("malformed amount: " + s)
		}
	}
	if len(fracPart) == 2 {
		frac := int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
		if cents > math.MaxInt64-frac {
			return 0, types.NewValidationError("amount too large: " + s)
		}
		cents += frac
	}
	return cents, nil
}
