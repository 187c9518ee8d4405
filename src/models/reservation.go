package models

import (
	"fmt"
	"time"

	"github.com/SrZeh/get-useapp-sub002/src/types"
)

type Reservation struct {
	ID       uint `gorm:"primarykey" json:"id"`
	ItemID   uint `json:"item_id,omitempty"`
	RenterID uint `json:"renter_id,omitempty"`
	OwnerID  uint `json:"owner_id,omitempty"`
	// ItemTitle is denormalized for display so listings never join Item.
	ItemTitle string `json:"item_title,omitempty"`

	// StartDate and EndDate are inclusive calendar dates (YYYY-MM-DD).
	// Days is the exclusive day count derived at creation.
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Days      int64  `json:"days,omitempty"`

	IsFree         bool  `json:"is_free,omitempty"`
	DailyRateCents int64 `json:"daily_rate_cents,omitempty"`
	// TotalCents is the customer total fixed at creation time. Paid
	// transitions compare against this value, never a recomputation.
	TotalCents int64 `json:"total_cents,omitempty"`

	PaymentIntentID      *string `json:"payment_intent_id,omitempty"`
	TransferID           *string `json:"transfer_id,omitempty"`
	OwnerStripeAccountID *string `json:"owner_stripe_account_id,omitempty"`

	Status        types.ReservationStatus `gorm:"default:'requested'" json:"status,omitempty"`
	TransferredAt *time.Time              `json:"transferred_at,omitempty"`

	Item   *Item `gorm:"foreignKey:item_id" json:"item,omitempty"`
	Renter *User `gorm:"foreignKey:renter_id" json:"renter,omitempty"`
	Owner  *User `gorm:"foreignKey:owner_id" json:"owner,omitempty"`

	types.Timestamps
}

// TransferGroup tags every processor transfer with the reservation it
// settles, so retries are deduplicated and the reconciliation sweep can
// find transfers that were executed but never written back.
func (r *Reservation) TransferGroup() string {
	return fmt.Sprintf("reservation_%d", r.ID)
}
