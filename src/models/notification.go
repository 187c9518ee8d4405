package models

import (
	"github.com/SrZeh/get-useapp-sub002/src/types"
	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID              `gorm:"primarykey;type:uuid" json:"id"`
	RecipientID uint                   `gorm:"index" json:"recipient_id"`
	Type        types.NotificationType `json:"type"`
	EntityType  *string                `json:"entity_type,omitempty"`
	EntityID    *string                `json:"entity_id,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Body        string                 `json:"body,omitempty"`
	Metadata    *types.JSONB           `gorm:"type:jsonb" json:"metadata,omitempty"`
	Read        bool                   `gorm:"default:false" json:"read"`

	types.Timestamps
}

// NotificationCounter is the per-recipient aggregate bucket. Total always
// equals the sum of the four buckets; rows are only ever written in the
// same transaction as the notification they account for.
type NotificationCounter struct {
	RecipientID  uint  `gorm:"primarykey" json:"recipient_id"`
	Messages     int64 `json:"messages"`
	Reservations int64 `json:"reservations"`
	Payments     int64 `json:"payments"`
	Interactions int64 `json:"interactions"`
	Total        int64 `json:"total"`

	types.Timestamps
}
