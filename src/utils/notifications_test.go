package utils

import (
	"fmt"
	"sync"
	"testing"

	"github.com/SrZeh/get-useapp-sub002/src/models"
	"github.com/SrZeh/get-useapp-sub002/src/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBucketForType(t *testing.T) {
	assert.Equal(t, types.BUCKET_MESSAGES, BucketForType(types.NOTIFICATION_MESSAGE))
	assert.Equal(t, types.BUCKET_RESERVATIONS, BucketForType(types.NOTIFICATION_RESERVATION_REQUEST))
	assert.Equal(t, types.BUCKET_RESERVATIONS, BucketForType(types.NOTIFICATION_RESERVATION_STATUS))
	assert.Equal(t, types.BUCKET_PAYMENTS, BucketForType(types.NOTIFICATION_PAYMENT_UPDATE))
	assert.Equal(t, types.BUCKET_INTERACTIONS, BucketForType(types.NOTIFICATION_REVIEW))
	assert.Equal(t, types.BUCKET_INTERACTIONS, BucketForType(types.NOTIFICATION_SYSTEM))
	assert.Equal(t, types.BUCKET_INTERACTIONS, BucketForType(types.NotificationType("whatever")))
}

func TestCreateNotification(t *testing.T) {
	d := newTestDB(t)
	recipient := seedUser(t, d, "someone@example.com", nil)

	id, err := CreateNotification(&types.CreateNotificationRequestBody{
		RecipientID: recipient.ID,
		Type:        types.NOTIFICATION_MESSAGE,
		Title:       "Hello",
		Body:        "You have a new message",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	counter, err := GetCounters(recipient.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), counter.Messages)
	assert.Equal(t, int64(1), counter.Total)

	list, err := ListNotifications(recipient.ID)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "Hello", list[0].Title)
	assert.False(t, list[0].Read)
}

func TestCreateNotificationNoop(t *testing.T) {
	newTestDB(t)

	id, err := CreateNotification(nil)
	assert.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	id, err = CreateNotification(&types.CreateNotificationRequestBody{Type: types.NOTIFICATION_MESSAGE})
	assert.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	id, err = CreateNotification(&types.CreateNotificationRequestBody{RecipientID: 1})
	assert.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)
}

func TestCreateNotificationIncrementsExistingCounter(t *testing.T) {
	d := newTestDB(t)
	recipient := seedUser(t, d, "someone@example.com", nil)

	// A counter row already on disk must be incremented in place, not
	// collide with the insert.
	existing := models.NotificationCounter{
		RecipientID: recipient.ID,
		Messages:    3,
		Payments:    1,
		Total:       4,
	}
	assert.NoError(t, d.Create(&existing).Error)

	_, err := CreateNotification(&types.CreateNotificationRequestBody{
		RecipientID: recipient.ID,
		Type:        types.NOTIFICATION_MESSAGE,
		Title:       "Hello again",
	})
	assert.NoError(t, err)

	counter, err := GetCounters(recipient.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), counter.Messages)
	assert.Equal(t, int64(1), counter.Payments)
	assert.Equal(t, int64(5), counter.Total)

	var rows int64
	d.Model(&models.NotificationCounter{}).
		Where(&models.NotificationCounter{RecipientID: recipient.ID}).
		Count(&rows)
	assert.Equal(t, int64(1), rows)
}

func TestCounterBucketsUnderConcurrency(t *testing.T) {
	d := newTestDB(t)
	recipient := seedUser(t, d, "someone@example.com", nil)

	mix := []types.NotificationType{
		types.NOTIFICATION_MESSAGE,
		types.NOTIFICATION_RESERVATION_REQUEST,
		types.NOTIFICATION_RESERVATION_STATUS,
		types.NOTIFICATION_PAYMENT_UPDATE,
		types.NOTIFICATION_REVIEW,
	}
	const rounds = 4

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		for _, nt := range mix {
			wg.Add(1)
			go func(nt types.NotificationType, n int) {
				defer wg.Done()
				_, err := CreateNotification(&types.CreateNotificationRequestBody{
					RecipientID: recipient.ID,
					Type:        nt,
					Title:       fmt.Sprintf("notification %d", n),
				})
				assert.NoError(t, err)
			}(nt, i)
		}
	}
	wg.Wait()

	counter, err := GetCounters(recipient.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(rounds), counter.Messages)
	assert.Equal(t, int64(2*rounds), counter.Reservations)
	assert.Equal(t, int64(rounds), counter.Payments)
	assert.Equal(t, int64(rounds), counter.Interactions)
	assert.Equal(t, int64(len(mix)*rounds), counter.Total)

	var stored int64
	d.Model(&models.Notification{}).Count(&stored)
	assert.Equal(t, int64(len(mix)*rounds), stored)
}

func TestGetCountersZeroValue(t *testing.T) {
	newTestDB(t)
	counter, err := GetCounters(42)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), counter.RecipientID)
	assert.Equal(t, int64(0), counter.Total)
}

func TestMarkNotificationRead(t *testing.T) {
	d := newTestDB(t)
	recipient := seedUser(t, d, "someone@example.com", nil)
	other := seedUser(t, d, "other@example.com", nil)

	id, err := CreateNotification(&types.CreateNotificationRequestBody{
		RecipientID: recipient.ID,
		Type:        types.NOTIFICATION_MESSAGE,
		Title:       "Hello",
	})
	assert.NoError(t, err)

	// Someone else's notification is not yours to mark.
	err = MarkNotificationRead(other.ID, id)
	assert.Error(t, err)

	assert.NoError(t, MarkNotificationRead(recipient.ID, id))
	list, err := ListNotifications(recipient.ID)
	assert.NoError(t, err)
	assert.True(t, list[0].Read)

	// Counters track lifetime activity, reading does not decrement.
	counter, err := GetCounters(recipient.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), counter.Total)
}
