package utils

import (
	"errors"
	"log"

	"github.com/SrZeh/get-useapp-sub002/src/db"
	"github.com/SrZeh/get-useapp-sub002/src/models"
	"github.com/SrZeh/get-useapp-sub002/src/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BucketForType maps a notification type to the one counter bucket it
// charges. Unknown types land in interactions.
func BucketForType(t types.NotificationType) types.CounterBucket {
	switch t {
	case types.NOTIFICATION_MESSAGE:
		return types.BUCKET_MESSAGES
	case types.NOTIFICATION_RESERVATION_REQUEST, types.NOTIFICATION_RESERVATION_STATUS:
		return types.BUCKET_RESERVATIONS
	case types.NOTIFICATION_PAYMENT_UPDATE:
		return types.BUCKET_PAYMENTS
	default:
		return types.BUCKET_INTERACTIONS
	}
}

// CreateNotification inserts the notification record and charges the
// recipient's counter bucket in one transaction, so neither is ever
// observable without the other. A missing recipient or type is a no-op
// returning the zero id, not a failure.
func CreateNotification(params *types.CreateNotificationRequestBody) (uuid.UUID, error) {
	if params == nil || params.RecipientID == 0 || params.Type == "" {
		return uuid.Nil, nil
	}
	bucket := string(BucketForType(params.Type))
	counter := models.NotificationCounter{RecipientID: params.RecipientID, Total: 1}
	switch BucketForType(params.Type) {
	case types.BUCKET_MESSAGES:
		counter.Messages = 1
	case types.BUCKET_RESERVATIONS:
		counter.Reservations = 1
	case types.BUCKET_PAYMENTS:
		counter.Payments = 1
	default:
		counter.Interactions = 1
	}
	notification := models.Notification{
		ID:          uuid.New(),
		RecipientID: params.RecipientID,
		Type:        params.Type,
		EntityType:  params.EntityType,
		EntityID:    params.EntityID,
		Title:       params.Title,
		Body:        params.Body,
	}
	if params.Metadata != nil {
		notification.Metadata = &params.Metadata
	}

	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
		// Single upsert keeps the bucket and total moving together under
		// concurrent writers: the recipient's first notification inserts
		// the row, every later one increments in place.
		if err := tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "recipient_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					bucket:  gorm.Expr(bucket + " + 1"),
					"total": gorm.Expr("total + 1"),
				}),
			}).
			Create(&counter).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("CreateNotification failed for recipient %d: %s\n", params.RecipientID, err.Error())
		return uuid.Nil, err
	}
	return notification.ID, nil
}

// GetCounters returns the recipient's counter bucket, all zeroes when no
// notification was ever recorded.
func GetCounters(recipientId uint) (*models.NotificationCounter, error) {
	var counter models.NotificationCounter
	db := db.GetDb()
	err := db.
		Where(&models.NotificationCounter{RecipientID: recipientId}).
		First(&counter).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotificationCounter{RecipientID: recipientId}, nil
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

func ListNotifications(recipientId uint) ([]models.Notification, error) {
	var notifications []models.Notification
	db := db.GetDb()
	err := db.
		Model(&models.Notification{}).
		Where(&models.Notification{RecipientID: recipientId}).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).
		Error
	return notifications, err
}

// MarkNotificationRead flips the read flag. Counters track lifetime
// activity and are not decremented here.
func MarkNotificationRead(recipientId uint, id uuid.UUID) error {
	db := db.GetDb()
	res := db.
		Model(&models.Notification{}).
		Where(&models.Notification{ID: id, RecipientID: recipientId}).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewValidationError("notification not found")
	}
	return nil
}
