package models

import "github.com/SrZeh/get-useapp-sub002/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	// StripeAccountID is the connected account receiving this user's
	// payouts. Resolved at payout time when the reservation carries none.
	StripeAccountID *string `json:"stripe_account_id,omitempty"`

	types.Timestamps
}
