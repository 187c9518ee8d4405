package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/SrZeh/get-useapp-sub002/src/config"
	"github.com/SrZeh/get-useapp-sub002/src/db"
	"github.com/SrZeh/get-useapp-sub002/src/lib"
	"github.com/SrZeh/get-useapp-sub002/src/models"
	"github.com/SrZeh/get-useapp-sub002/src/types"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// providerError keeps the processor's own code and message intact on the
// way out.
func providerError(err error) *types.Rejection {
	var se *stripe.Error
	if errors.As(err, &se) {
		return types.NewProviderError(string(se.Code), se.Msg)
	}
	return types.NewProviderError("", err.Error())
}

// ReleasePayout transfers the owner's share of a returned reservation's
// charge to their connected account.
//
// The external transfer sits between a transactional idempotency check
// and a transactional write-back; a crash in between leaves a transfer
// executed but unrecorded. Every transfer therefore carries the
// reservation's idempotency key and transfer group so a retry is
// deduplicated by the processor and the reconciliation sweep can heal
// the record.
func ReleasePayout(ctx context.Context, pay lib.PaymentsAPI, reservationId, requestingUid uint) (*models.Reservation, error) {
	var reservation models.Reservation
	var destination string
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Reservation{ID: reservationId}).First(&reservation).Error; err != nil {
			return types.NewValidationError("reservation not found")
		}
		if reservation.OwnerID != requestingUid {
			return types.NewAuthorizationError("only the item owner can release a payout")
		}
		if reservation.IsFree {
			return types.NewPreconditionError(
				"free reservations have nothing to pay out",
				string(reservation.Status),
				string(types.RESERVATION_RETURNED),
			)
		}
		if reservation.OwnerStripeAccountID != nil && *reservation.OwnerStripeAccountID != "" {
			destination = *reservation.OwnerStripeAccountID
			return nil
		}
		var owner models.User
		if err := tx.Where(&models.User{ID: reservation.OwnerID}).First(&owner).Error; err != nil {
			return types.NewPreconditionError(
				"owner profile not found",
				string(reservation.Status),
				string(types.RESERVATION_RETURNED),
			)
		}
		if owner.StripeAccountID == nil || *owner.StripeAccountID == "" {
			return types.NewPreconditionError(
				"owner has no payout destination account",
				string(reservation.Status),
				string(types.RESERVATION_RETURNED),
			)
		}
		destination = *owner.StripeAccountID
		return nil
	})
	if err != nil {
		log.Printf("ReleasePayout rejected for reservation %d: %s\n", reservationId, err.Error())
		return nil, err
	}

	// Idempotency: a recorded transfer means the money already moved.
	if reservation.TransferID != nil {
		log.Printf("Reservation %d already paid out with transfer %s\n", reservation.ID, *reservation.TransferID)
		return &reservation, nil
	}
	if !CanTransition(reservation.Status, types.RESERVATION_RELEASED) {
		return nil, transitionError(reservation.Status, types.RESERVATION_RELEASED)
	}
	if reservation.PaymentIntentID == nil || *reservation.PaymentIntentID == "" {
		return nil, types.NewPreconditionError(
			"reservation has no payment intent",
			string(reservation.Status),
			string(types.RESERVATION_RELEASED),
		)
	}

	tctx, cancel := context.WithTimeout(ctx, config.STRIPE_CALL_TIMEOUT_SECONDS*time.Second)
	defer cancel()

	pi, err := pay.RetrievePaymentIntent(tctx, *reservation.PaymentIntentID)
	if err != nil {
		return nil, providerError(err)
	}
	charge := pi.LatestCharge
	if charge == nil || !charge.Captured {
		return nil, types.NewPreconditionError(
			"payment was never captured",
			string(reservation.Status),
			string(types.RESERVATION_RELEASED),
		)
	}
	if charge.BalanceTransaction == nil {
		return nil, types.NewPreconditionError(
			"charge has no balance transaction",
			string(reservation.Status),
			string(types.RESERVATION_RELEASED),
		)
	}
	bt, err := pay.RetrieveBalanceTransaction(tctx, charge.BalanceTransaction.ID)
	if err != nil {
		return nil, providerError(err)
	}
	if time.Now().Unix() < bt.AvailableOn {
		return nil, types.NewDeferralError(bt.AvailableOn)
	}

	feeCents := RoundHalfAway(float64(charge.Amount) * config.APP_FEE_PCT)
	transferCents := charge.Amount - feeCents
	if transferCents <= 0 {
		return nil, types.NewValidationError("transfer amount must be positive")
	}

	group := reservation.TransferGroup()
	params := &stripe.TransferCreateParams{
		Amount:            stripe.Int64(transferCents),
		Currency:          stripe.String(string(charge.Currency)),
		Destination:       stripe.String(destination),
		SourceTransaction: stripe.String(charge.ID),
		TransferGroup:     stripe.String(group),
		Metadata: map[string]string{
			"reservation_id": fmt.Sprint(reservation.ID),
		},
	}
	params.SetIdempotencyKey(group)
	transfer, err := pay.CreateTransfer(tctx, params)
	if err != nil {
		return nil, providerError(err)
	}
	log.Printf("Transfer %s created for reservation %d: %d %s -> %s\n",
		transfer.ID, reservation.ID, transferCents, charge.Currency, destination)

	if err := recordTransfer(&reservation, transfer.ID); err != nil {
		log.Printf("Transfer %s executed but not recorded for reservation %d: %s\n",
			transfer.ID, reservation.ID, err.Error())
		return nil, err
	}

	notifyReservation(&reservation, reservation.OwnerID, types.NOTIFICATION_PAYMENT_UPDATE,
		"Payout released",
		fmt.Sprintf("Your payout for %s is on the way", reservation.ItemTitle))
	notifyReservation(&reservation, reservation.RenterID, types.NOTIFICATION_PAYMENT_UPDATE,
		"Rental settled",
		fmt.Sprintf("The rental of %s is fully settled", reservation.ItemTitle))
	return &reservation, nil
}

// recordTransfer writes the payout outcome. The update is conditional on
// transfer_id still being unset; losing the race to a concurrent release
// is fine because both calls shared one idempotency key and therefore one
// transfer.
func recordTransfer(reservation *models.Reservation, transferId string) error {
	now := time.Now()
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Reservation{}).
			Where("id = ? AND transfer_id IS NULL", reservation.ID).
			Where(&models.Reservation{Status: types.RESERVATION_RETURNED}).
			Updates(&models.Reservation{
				TransferID:    &transferId,
				TransferredAt: &now,
				Status:        types.RESERVATION_RELEASED,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			log.Printf("Reservation %d was released concurrently\n", reservation.ID)
		}
		reservation.TransferID = &transferId
		reservation.TransferredAt = &now
		reservation.Status = types.RESERVATION_RELEASED
		return nil
	})
}

// ReconcilePayouts heals the two-phase hazard: it lists processor
// transfers by transfer group for reservations that are returned but
// carry no transfer record, and writes back any transfer that executed
// without being recorded.
func ReconcilePayouts(ctx context.Context, pay lib.PaymentsAPI) error {
	var pending []models.Reservation
	db := db.GetDb()
	if err := db.
		Model(&models.Reservation{}).
		Where("transfer_id IS NULL AND payment_intent_id IS NOT NULL").
		Where(&models.Reservation{Status: types.RESERVATION_RETURNED}).
		Find(&pending).
		Error; err != nil {
		return err
	}
	for i := range pending {
		r := &pending[i]
		tctx, cancel := context.WithTimeout(ctx, config.STRIPE_CALL_TIMEOUT_SECONDS*time.Second)
		transfers, err := pay.ListTransfers(tctx, r.TransferGroup())
		cancel()
		if err != nil {
			log.Printf("Reconcile: could not list transfers for reservation %d: %s\n", r.ID, err.Error())
			continue
		}
		if len(transfers) == 0 {
			continue
		}
		if err := recordTransfer(r, transfers[0].ID); err != nil {
			log.Printf("Reconcile: could not record transfer %s for reservation %d: %s\n",
				transfers[0].ID, r.ID, err.Error())
			continue
		}
		log.Printf("Reconcile: healed reservation %d with transfer %s\n", r.ID, transfers[0].ID)
	}
	return nil
}

// StartPayoutReconciliation schedules the sweep on a fixed interval.
func StartPayoutReconciliation(interval time.Duration) {
	if _, err := lib.CreateCronJob(func() {
		if err := ReconcilePayouts(context.Background(), lib.GetPayments()); err != nil {
			log.Printf("Payout reconciliation failed: %s\n", err.Error())
		}
	}, interval); err != nil {
		log.Printf("Error scheduling payout reconciliation: %s\n", err.Error())
	}
}
