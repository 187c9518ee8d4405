package models

import "github.com/SrZeh/get-useapp-sub002/src/types"

type Item struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	OwnerID        uint   `json:"owner_id,omitempty"`
	Title          string `json:"title,omitempty"`
	DailyRateCents int64  `json:"daily_rate_cents,omitempty"`
	IsFree         bool   `json:"is_free,omitempty"`
	Currency       string `gorm:"default:'brl'" json:"currency,omitempty"`

	Owner *User `gorm:"foreignKey:owner_id" json:"owner,omitempty"`

	types.Timestamps
}

// BookedDay is one row per (item, calendar day) held by an accepted or
// paid reservation. Existence of the row is the whole index.
type BookedDay struct {
	ID            uint   `gorm:"primarykey" json:"-"`
	ItemID        uint   `gorm:"uniqueIndex:idx_item_day" json:"item_id"`
	Day           string `gorm:"uniqueIndex:idx_item_day" json:"day"`
	ReservationID uint   `json:"reservation_id"`
}
