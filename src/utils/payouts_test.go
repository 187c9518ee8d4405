package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SrZeh/get-useapp-sub002/src/models"
	"github.com/SrZeh/get-useapp-sub002/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

type fakePayments struct {
	availableOn int64
	chargeCents int64
	captured    bool
	transfers   []*stripe.Transfer
	created     []*stripe.TransferCreateParams
	piErr       error
}

func (f *fakePayments) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	if f.piErr != nil {
		return nil, f.piErr
	}
	return &stripe.PaymentIntent{
		ID: id,
		LatestCharge: &stripe.Charge{
			ID:                 "ch_test",
			Amount:             f.chargeCents,
			Currency:           stripe.CurrencyBRL,
			Captured:           f.captured,
			BalanceTransaction: &stripe.BalanceTransaction{ID: "txn_test"},
		},
	}, nil
}

func (f *fakePayments) RetrieveCharge(ctx context.Context, id string) (*stripe.Charge, error) {
	return &stripe.Charge{ID: id, Amount: f.chargeCents, Captured: f.captured}, nil
}

func (f *fakePayments) RetrieveBalanceTransaction(ctx context.Context, id string) (*stripe.BalanceTransaction, error) {
	return &stripe.BalanceTransaction{ID: id, AvailableOn: f.availableOn}, nil
}

func (f *fakePayments) CreateTransfer(ctx context.Context, params *stripe.TransferCreateParams) (*stripe.Transfer, error) {
	f.created = append(f.created, params)
	tr := &stripe.Transfer{ID: "tr_test", Amount: *params.Amount}
	f.transfers = append(f.transfers, tr)
	return tr, nil
}

func (f *fakePayments) ListTransfers(ctx context.Context, transferGroup string) ([]*stripe.Transfer, error) {
	return f.transfers, nil
}

func seedReturnedReservation(t *testing.T, d *gorm.DB, destination *string) (*models.Reservation, *models.User) {
	owner := seedUser(t, d, "owner@example.com", destination)
	renter := seedUser(t, d, "renter@example.com", nil)
	item := seedItem(t, d, owner.ID, 5000, false)

	reservation, err := RequestReservation(renter.ID, &types.CreateReservationRequestBody{
		ItemID:    item.ID,
		StartDate: "2025-03-01",
		EndDate:   "2025-03-02",
	})
	assert.NoError(t, err)
	_, err = AcceptReservation(context.Background(), reservation.ID, owner.ID)
	assert.NoError(t, err)
	reservation, err = ConfirmPayment(reservation.ID, "pi_test", reservation.TotalCents)
	assert.NoError(t, err)
	reservation, err = ConfirmReturn(context.Background(), reservation.ID, owner.ID)
	assert.NoError(t, err)
	return reservation, owner
}

func TestReleasePayout(t *testing.T) {
	d := newTestDB(t)
	acct := "acct_owner"
	reservation, owner := seedReturnedReservation(t, d, &acct)

	pay := &fakePayments{
		availableOn: time.Now().Add(-time.Hour).Unix(),
		chargeCents: reservation.TotalCents,
		captured:    true,
	}
	released, err := ReleasePayout(context.Background(), pay, reservation.ID, owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, types.RESERVATION_RELEASED, released.Status)
	assert.Equal(t, "tr_test", *released.TransferID)
	assert.NotNil(t, released.TransferredAt)

	// 10739 charged, 10% platform fee of 1074, 9665 transferred.
	assert.Len(t, pay.created, 1)
	params := pay.created[0]
	assert.Equal(t, int64(9665), *params.Amount)
	assert.Equal(t, "acct_owner", *params.Destination)
	assert.Equal(t, "ch_test", *params.SourceTransaction)
	assert.Equal(t, reservation.TransferGroup(), *params.TransferGroup)
}

func TestReleasePayoutDeferred(t *testing.T) {
	d := newTestDB(t)
	acct := "acct_owner"
	reservation, owner := seedReturnedReservation(t, d, &acct)

	availableOn := time.Now().Add(48 * time.Hour).Unix()
	pay := &fakePayments{
		availableOn: availableOn,
		chargeCents: reservation.TotalCents,
		captured:    true,
	}
	_, err := ReleasePayout(context.Background(), pay, reservation.ID, owner.ID)
	rejection, ok := types.AsRejection(err)
	assert.True(t, ok)
	assert.Equal(t, types.REJECT_DEFERRAL, rejection.Kind)
	assert.Equal(t, availableOn, rejection.AvailableOn)

	// No money moved, nothing recorded.
	assert.Empty(t, pay.created)
	var fresh models.Reservation
	assert.NoError(t, d.First(&fresh, reservation.ID).Error)
	assert.Nil(t, fresh.TransferID)
	assert.Equal(t, types.RESERVATION_RETURNED, fresh.Status)
}

func TestReleasePayoutIdempotent(t *testing.T) {
	d := newTestDB(t)
	acct := "acct_owner"
	reservation, owner := seedReturnedReservation(t, d, &acct)

	pay := &fakePayments{
		availableOn: time.Now().Add(-time.Hour).Unix(),
		chargeCents: reservation.TotalCents,
		captured:    true,
	}
	first, err := ReleasePayout(context.Background(), pay, reservation.ID, owner.ID)
	assert.NoError(t, err)
	again, err := ReleasePayout(context.Background(), pay, reservation.ID, owner.ID)
	assert.NoError(t, err)

	assert.Len(t, pay.created, 1)
	assert.Equal(t, *first.TransferID, *again.TransferID)
}

func TestReleasePayoutGuards(t *testing.T) {
	d := newTestDB(t)
	acct := "acct_owner"
	owner := seedUser(t, d, "owner@example.com", &acct)
	renter := seedUser(t, d, "renter@example.com", nil)
	item := seedItem(t, d, owner.ID, 5000, false)

	reservation, err := RequestReservation(renter.ID, &types.CreateReservationRequestBody{
		ItemID:    item.ID,
		StartDate: "2025-03-01",
		EndDate:   "2025-03-02",
	})
	assert.NoError(t, err)
	pay := &fakePayments{captured: true, chargeCents: reservation.TotalCents}

	// Only the owner may release.
	_, err = ReleasePayout(context.Background(), pay, reservation.ID, renter.ID)
	rejection, ok := types.AsRejection(err)
	assert.True(t, ok)
	assert.Equal(t, types.REJECT_AUTHORIZATION, rejection.Kind)

	// Not returned yet.
	_, err = ReleasePayout(context.Background(), pay, reservation.ID, owner.ID)
	rejection, ok = types.AsRejection(err)
	assert.True(t, ok)
	assert.Equal(t, types.REJECT_PRECONDITION, rejection.Kind)
	assert.Equal(t, string(types.RESERVATION_REQUESTED), rejection.CurrentState)
	assert.Empty(t, pay.created)
}

func TestReleasePayoutNoDestination(t *testing.T) {
	d := newTestDB(t)
	reservation, owner := seedReturnedReservation(t, d, nil)

	pay := &fakePayments{
		availableOn: time.Now().Add(-time.Hour).Unix(),
		chargeCents: reservation.TotalCents,
		captured:    true,
	}
	_, err := ReleasePayout(context.Background(), pay, reservation.ID, owner.ID)
	rejection, ok := types.AsRejection(err)
	assert.True(t, ok)
	assert.Equal(t, types.REJECT_PRECONDITION, rejection.Kind)
	assert.Empty(t, pay.created)
}

func TestReleasePayoutProviderError(t *testing.T) {
	d := newTestDB(t)
	acct := "acct_owner"
	reservation, owner := seedReturnedReservation(t, d, &acct)

	pay := &fakePayments{
		piErr: &stripe.Error{Code: stripe.ErrorCodeResourceMissing, Msg: "No such payment_intent"},
	}
	_, err := ReleasePayout(context.Background(), pay, reservation.ID, owner.ID)
	rejection, ok := types.AsRejection(err)
	assert.True(t, ok)
	assert.Equal(t, types.REJECT_PROVIDER, rejection.Kind)
	assert.Equal(t, string(stripe.ErrorCodeResourceMissing), rejection.ProviderCode)
	assert.Equal(t, "No such payment_intent", rejection.Message)
}

func TestProviderErrorWrapsPlainErrors(t *testing.T) {
	rejection := providerError(errors.New("connection reset"))
	assert.Equal(t, types.REJECT_PROVIDER, rejection.Kind)
	assert.Equal(t, "connection reset", rejection.Message)
	assert.Empty(t, rejection.ProviderCode)
}

func TestReconcilePayouts(t *testing.T) {
	d := newTestDB(t)
	acct := "acct_owner"
	reservation, _ := seedReturnedReservation(t, d, &acct)

	// A transfer executed at the processor but was never written back.
	pay := &fakePayments{
		transfers: []*stripe.Transfer{{ID: "tr_orphan", Amount: 9665}},
	}
	assert.NoError(t, ReconcilePayouts(context.Background(), pay))

	var healed models.Reservation
	assert.NoError(t, d.First(&healed, reservation.ID).Error)
	assert.Equal(t, types.RESERVATION_RELEASED, healed.Status)
	assert.Equal(t, "tr_orphan", *healed.TransferID)
}
