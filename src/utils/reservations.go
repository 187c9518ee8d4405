package utils

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/SrZeh/get-useapp-sub002/src/db"
	"github.com/SrZeh/get-useapp-sub002/src/lib"
	"github.com/SrZeh/get-useapp-sub002/src/models"
	"github.com/SrZeh/get-useapp-sub002/src/types"
	"gorm.io/gorm"
)

// legalTransitions is the reservation lifecycle adjacency list. Anything
// not listed here is rejected, never coerced.
var legalTransitions = map[types.ReservationStatus][]types.ReservationStatus{
	types.RESERVATION_REQUESTED: {types.RESERVATION_ACCEPTED, types.RESERVATION_CANCELLED},
	types.RESERVATION_ACCEPTED:  {types.RESERVATION_PAID, types.RESERVATION_PICKED_UP},
	types.RESERVATION_PAID:      {types.RESERVATION_RETURNED},
	types.RESERVATION_RETURNED:  {types.RESERVATION_RELEASED},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to types.ReservationStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func transitionError(current, wanted types.ReservationStatus) *types.Rejection {
	return types.NewPreconditionError(
		fmt.Sprintf("cannot move reservation from %s to %s", current, wanted),
		string(current),
		string(wanted),
	)
}

// RequestReservation creates a reservation in the requested state. The
// customer total is computed once here and never re-derived afterwards,
// so a later rate change on the item cannot drift the agreed price.
func RequestReservation(renterId uint, params *types.CreateReservationRequestBody) (*models.Reservation, error) {
	start, err := ParseDay(params.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDay(params.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, types.NewValidationError("end_date precedes start_date")
	}
	endExclusive, err := NextDay(params.EndDate)
	if err != nil {
		return nil, err
	}
	days, err := DiffDaysExclusive(params.StartDate, endExclusive)
	if err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, types.NewValidationError("date range covers no billable days")
	}

	var reservation models.Reservation
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.Where(&models.Item{ID: params.ItemID}).First(&item).Error; err != nil {
			return types.NewValidationError("item not found")
		}
		if item.OwnerID == renterId {
			return types.NewValidationError("cannot rent your own item")
		}
		reservation = models.Reservation{
			ItemID:    item.ID,
			ItemTitle: item.Title,
			RenterID:  renterId,
			OwnerID:   item.OwnerID,
			StartDate: params.StartDate,
			EndDate:   params.EndDate,
			Days:      days,
			IsFree:    item.IsFree,
			Status:    types.RESERVATION_REQUESTED,
		}
		if !item.IsFree {
			if item.DailyRateCents <= 0 {
				return types.NewValidationError("item has no valid daily rate")
			}
			reservation.DailyRateCents = item.DailyRateCents
			reservation.TotalCents = ComputeFees(item.DailyRateCents * days).TotalCents
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("RequestReservation failed: %s\n", err.Error())
		return nil, err
	}

	notifyReservation(&reservation, reservation.OwnerID, types.NOTIFICATION_RESERVATION_REQUEST,
		"New rental request",
		fmt.Sprintf("%s was requested for %d day(s)", reservation.ItemTitle, reservation.Days))
	return &reservation, nil
}

// AcceptReservation moves requested -> accepted after checking the target
// date range against the item's booked-day index, then marks those days
// booked in the same transaction.
func AcceptReservation(ctx context.Context, reservationId, requestingUid uint) (*models.Reservation, error) {
	var reservation models.Reservation
	var bookedDays []string
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Reservation{ID: reservationId}).First(&reservation).Error; err != nil {
			return types.NewValidationError("reservation not found")
		}
		if reservation.OwnerID != requestingUid {
			return types.NewAuthorizationError("only the item owner can accept a reservation")
		}
		if !CanTransition(reservation.Status, types.RESERVATION_ACCEPTED) {
			return transitionError(reservation.Status, types.RESERVATION_ACCEPTED)
		}

		days, err := EnumerateInclusive(reservation.StartDate, reservation.EndDate)
		if err != nil {
			return err
		}
		var conflicts int64
		if err := tx.
			Model(&models.BookedDay{}).
			Where("item_id = ? AND day IN (?)", reservation.ItemID, days).
			Count(&conflicts).
			Error; err != nil {
			return err
		}
		if conflicts > 0 {
			return types.NewPreconditionError(
				"the requested dates conflict with another reservation",
				string(reservation.Status),
				string(types.RESERVATION_ACCEPTED),
			)
		}
		for _, day := range days {
			booked := models.BookedDay{
				ItemID:        reservation.ItemID,
				Day:           day,
				ReservationID: reservation.ID,
			}
			if err := tx.Create(&booked).Error; err != nil {
				return err
			}
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: reservationId, Status: types.RESERVATION_REQUESTED}).
			Update("status", types.RESERVATION_ACCEPTED).
			Error; err != nil {
			return err
		}
		reservation.Status = types.RESERVATION_ACCEPTED
		bookedDays = days
		return nil
	})
	if err != nil {
		log.Printf("AcceptReservation failed: %s\n", err.Error())
		return nil, err
	}

	lib.CacheBookedDays(ctx, reservation.ItemID, bookedDays)
	notifyReservation(&reservation, reservation.RenterID, types.NOTIFICATION_RESERVATION_STATUS,
		"Reservation accepted",
		fmt.Sprintf("Your request for %s was accepted", reservation.ItemTitle))
	return &reservation, nil
}

// CancelReservation is legal from the requested state only.
func CancelReservation(reservationId, requestingUid uint) (*models.Reservation, error) {
	var reservation models.Reservation
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Reservation{ID: reservationId}).First(&reservation).Error; err != nil {
			return types.NewValidationError("reservation not found")
		}
		if reservation.RenterID != requestingUid {
			return types.NewAuthorizationError("only the renter can cancel a reservation")
		}
		if !CanTransition(reservation.Status, types.RESERVATION_CANCELLED) {
			return transitionError(reservation.Status, types.RESERVATION_CANCELLED)
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: reservationId, Status: types.RESERVATION_REQUESTED}).
			Update("status", types.RESERVATION_CANCELLED).
			Error; err != nil {
			return err
		}
		reservation.Status = types.RESERVATION_CANCELLED
		return nil
	})
	if err != nil {
		log.Printf("CancelReservation failed: %s\n", err.Error())
		return nil, err
	}

	notifyReservation(&reservation, reservation.OwnerID, types.NOTIFICATION_RESERVATION_STATUS,
		"Reservation cancelled",
		fmt.Sprintf("The request for %s was cancelled", reservation.ItemTitle))
	return &reservation, nil
}

// ConfirmPayment moves accepted -> paid once the processor confirms the
// capture. The charged amount must equal the total fixed at creation.
func ConfirmPayment(reservationId uint, paymentIntentId string, amountCents int64) (*models.Reservation, error) {
	if paymentIntentId == "" {
		return nil, types.NewPreconditionError(
			"payment confirmation carries no payment intent",
			"", string(types.RESERVATION_PAID),
		)
	}
	var reservation models.Reservation
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Reservation{ID: reservationId}).First(&reservation).Error; err != nil {
			return types.NewValidationError("reservation not found")
		}
		if reservation.IsFree {
			return types.NewPreconditionError(
				"free reservations are never paid",
				string(reservation.Status),
				string(types.RESERVATION_PAID),
			)
		}
		if !CanTransition(reservation.Status, types.RESERVATION_PAID) {
			return transitionError(reservation.Status, types.RESERVATION_PAID)
		}
		if amountCents != reservation.TotalCents {
			return types.NewPreconditionError(
				fmt.Sprintf("charged amount %d does not match agreed total %d", amountCents, reservation.TotalCents),
				string(reservation.Status),
				string(types.RESERVATION_PAID),
			)
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: reservationId, Status: types.RESERVATION_ACCEPTED}).
			Updates(&models.Reservation{
				Status:          types.RESERVATION_PAID,
				PaymentIntentID: &paymentIntentId,
			}).
			Error; err != nil {
			return err
		}
		reservation.Status = types.RESERVATION_PAID
		reservation.PaymentIntentID = &paymentIntentId
		return nil
	})
	if err != nil {
		log.Printf("ConfirmPayment failed: %s\n", err.Error())
		return nil, err
	}

	notifyReservation(&reservation, reservation.OwnerID, types.NOTIFICATION_PAYMENT_UPDATE,
		"Payment received",
		fmt.Sprintf("Payment for %s was captured", reservation.ItemTitle))
	notifyReservation(&reservation, reservation.RenterID, types.NOTIFICATION_PAYMENT_UPDATE,
		"Payment confirmed",
		fmt.Sprintf("Your payment for %s went through", reservation.ItemTitle))
	return &reservation, nil
}

// ConfirmPickup is the free-path shortcut: the renter self-confirms
// receipt, skipping payment entirely.
func ConfirmPickup(reservationId, requestingUid uint) (*models.Reservation, error) {
	var reservation models.Reservation
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Reservation{ID: reservationId}).First(&reservation).Error; err != nil {
			return types.NewValidationError("reservation not found")
		}
		if reservation.RenterID != requestingUid {
			return types.NewAuthorizationError("only the renter can confirm pickup")
		}
		if !reservation.IsFree {
			return types.NewPreconditionError(
				"paid reservations complete through payment, not pickup",
				string(reservation.Status),
				string(types.RESERVATION_PICKED_UP),
			)
		}
		if !CanTransition(reservation.Status, types.RESERVATION_PICKED_UP) {
			return transitionError(reservation.Status, types.RESERVATION_PICKED_UP)
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: reservationId, Status: types.RESERVATION_ACCEPTED}).
			Update("status", types.RESERVATION_PICKED_UP).
			Error; err != nil {
			return err
		}
		reservation.Status = types.RESERVATION_PICKED_UP
		return nil
	})
	if err != nil {
		log.Printf("ConfirmPickup failed: %s\n", err.Error())
		return nil, err
	}

	notifyReservation(&reservation, reservation.OwnerID, types.NOTIFICATION_RESERVATION_STATUS,
		"Item picked up",
		fmt.Sprintf("%s was picked up by the renter", reservation.ItemTitle))
	return &reservation, nil
}

// ConfirmReturn moves paid -> returned and frees the item's calendar
// days. Either party may confirm the item is back.
func ConfirmReturn(ctx context.Context, reservationId, requestingUid uint) (*models.Reservation, error) {
	var reservation models.Reservation
	var freedDays []string
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Reservation{ID: reservationId}).First(&reservation).Error; err != nil {
			return types.NewValidationError("reservation not found")
		}
		if reservation.RenterID != requestingUid && reservation.OwnerID != requestingUid {
			return types.NewAuthorizationError("only the renter or the owner can confirm a return")
		}
		if !CanTransition(reservation.Status, types.RESERVATION_RETURNED) {
			return transitionError(reservation.Status, types.RESERVATION_RETURNED)
		}
		days, err := EnumerateInclusive(reservation.StartDate, reservation.EndDate)
		if err != nil {
			return err
		}
		if err := tx.
			Where(&models.BookedDay{ReservationID: reservation.ID}).
			Delete(&models.BookedDay{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: reservationId, Status: types.RESERVATION_PAID}).
			Update("status", types.RESERVATION_RETURNED).
			Error; err != nil {
			return err
		}
		reservation.Status = types.RESERVATION_RETURNED
		freedDays = days
		return nil
	})
	if err != nil {
		log.Printf("ConfirmReturn failed: %s\n", err.Error())
		return nil, err
	}

	lib.UncacheBookedDays(ctx, reservation.ItemID, freedDays)
	notifyReservation(&reservation, reservation.OwnerID, types.NOTIFICATION_RESERVATION_STATUS,
		"Item returned",
		fmt.Sprintf("%s is back and eligible for payout", reservation.ItemTitle))
	return &reservation, nil
}

// GetItemCalendar returns the item's booked days in ascending date
// order, serving from the redis cache when it is warm and falling back
// to the booked_days table. The cached set is unordered and gets sorted
// here so both paths answer the same way.
func GetItemCalendar(ctx context.Context, itemId uint) ([]string, error) {
	if cached := lib.GetCachedBookedDays(ctx, itemId); cached != nil {
		sort.Strings(cached)
		return cached, nil
	}
	var booked []models.BookedDay
	db := db.GetDb()
	if err := db.
		Where(&models.BookedDay{ItemID: itemId}).
		Order("day").
		Find(&booked).
		Error; err != nil {
		return nil, err
	}
	days := make([]string, 0, len(booked))
	for _, b := range booked {
		days = append(days, b.Day)
	}
	lib.CacheBookedDays(ctx, itemId, days)
	return days, nil
}

func GetReservation(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	db := db.GetDb()
	if err := db.
		Model(&models.Reservation{}).
		Where(&models.Reservation{ID: id}).
		Preload("Item").
		First(&reservation).
		Error; err != nil {
		return nil, types.NewValidationError("reservation not found")
	}
	return &reservation, nil
}

// ListReservationsForUser returns reservations where the user is either
// party, newest first.
func ListReservationsForUser(userId uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	db := db.GetDb()
	err := db.
		Model(&models.Reservation{}).
		Where("renter_id = ? OR owner_id = ?", userId, userId).
		Order("created_at DESC").
		Limit(50).
		Find(&reservations).
		Error
	return reservations, err
}

func notifyReservation(r *models.Reservation, recipient uint, t types.NotificationType, title, body string) {
	entityType := "reservation"
	entityId := fmt.Sprint(r.ID)
	if _, err := CreateNotification(&types.CreateNotificationRequestBody{
		RecipientID: recipient,
		Type:        t,
		EntityType:  &entityType,
		EntityID:    &entityId,
		Title:       title,
		Body:        body,
	}); err != nil {
		log.Printf("Failed to notify user %d about reservation %d: %s\n", recipient, r.ID, err.Error())
	}
}
