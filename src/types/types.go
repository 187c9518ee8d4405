package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported source type for JSONB")
	}
}

type ReservationStatus string

const (
	RESERVATION_REQUESTED ReservationStatus = "requested"
	RESERVATION_ACCEPTED  ReservationStatus = "accepted"
	RESERVATION_PAID      ReservationStatus = "paid"
	RESERVATION_PICKED_UP ReservationStatus = "picked_up"
	RESERVATION_RETURNED  ReservationStatus = "returned"
	RESERVATION_CANCELLED ReservationStatus = "cancelled"
	// RESERVATION_RELEASED marks a paid-out reservation. Only the payout
	// executor may move a reservation here.
	RESERVATION_RELEASED ReservationStatus = "released"
)

type NotificationType string

const (
	NOTIFICATION_MESSAGE             NotificationType = "message"
	NOTIFICATION_RESERVATION_REQUEST NotificationType = "reservation_request"
	NOTIFICATION_RESERVATION_STATUS  NotificationType = "reservation_status"
	NOTIFICATION_PAYMENT_UPDATE      NotificationType = "payment_update"
	NOTIFICATION_REVIEW              NotificationType = "review"
	NOTIFICATION_SYSTEM              NotificationType = "system"
)

// CounterBucket names the four aggregate buckets kept per recipient.
type CounterBucket string

const (
	BUCKET_MESSAGES     CounterBucket = "messages"
	BUCKET_RESERVATIONS CounterBucket = "reservations"
	BUCKET_PAYMENTS     CounterBucket = "payments"
	BUCKET_INTERACTIONS CounterBucket = "interactions"
)

// FeeBreakdown is the derived split of a rental's base price. All values
// are integer centavos. OwnerPayoutCents and AppFeeCents round
// independently, so their sum may drift from the base by one centavo;
// TotalCents carries the customer-side surcharges on top.
type FeeBreakdown struct {
	BaseCents        int64 `json:"base_cents"`
	ServiceFeeCents  int64 `json:"service_fee_cents"`
	SurchargeCents   int64 `json:"surcharge_cents"`
	AppFeeCents      int64 `json:"app_fee_cents"`
	OwnerPayoutCents int64 `json:"owner_payout_cents"`
	TotalCents       int64 `json:"total_cents"`
}

type CreateReservationRequestBody struct {
	ItemID    uint   `json:"item" binding:"required"`
	StartDate string `json:"start_date" binding:"required,rentaldate"`
	EndDate   string `json:"end_date" binding:"required,rentaldate"`
}

type CreateNotificationRequestBody struct {
	RecipientID uint             `json:"recipient" binding:"required"`
	Type        NotificationType `json:"type" binding:"required"`
	EntityType  *string          `json:"entity_type,omitempty"`
	EntityID    *string          `json:"entity_id,omitempty"`
	Title       string           `json:"title,omitempty"`
	Body        string           `json:"body,omitempty"`
	Metadata    JSONB            `json:"metadata,omitempty"`
}

type FeeQuoteRequestBody struct {
	DailyRate string `json:"daily_rate" binding:"required"`
	StartDate string `json:"start_date" binding:"required,rentaldate"`
	EndDate   string `json:"end_date" binding:"required,rentaldate"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
