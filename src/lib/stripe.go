package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// PaymentsAPI is the narrow processor surface the payout executor
// consumes. Handed to the executor explicitly so tests can swap in a
// fake without touching process-wide state.
type PaymentsAPI interface {
	RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	RetrieveCharge(ctx context.Context, id string) (*stripe.Charge, error)
	RetrieveBalanceTransaction(ctx context.Context, id string) (*stripe.BalanceTransaction, error)
	CreateTransfer(ctx context.Context, params *stripe.TransferCreateParams) (*stripe.Transfer, error)
	ListTransfers(ctx context.Context, transferGroup string) ([]*stripe.Transfer, error)
}

type StripePayments struct {
	sc *stripe.Client
}

func NewStripePayments(sc *stripe.Client) *StripePayments {
	return &StripePayments{sc: sc}
}

func (s *StripePayments) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentRetrieveParams{}
	params.AddExpand("latest_charge")
	return s.sc.V1PaymentIntents.Retrieve(ctx, id, params)
}

func (s *StripePayments) RetrieveCharge(ctx context.Context, id string) (*stripe.Charge, error) {
	return s.sc.V1Charges.Retrieve(ctx, id, &stripe.ChargeRetrieveParams{})
}

func (s *StripePayments) RetrieveBalanceTransaction(ctx context.Context, id string) (*stripe.BalanceTransaction, error) {
	return s.sc.V1BalanceTransactions.Retrieve(ctx, id, &stripe.BalanceTransactionRetrieveParams{})
}

func (s *StripePayments) CreateTransfer(ctx context.Context, params *stripe.TransferCreateParams) (*stripe.Transfer, error) {
	return s.sc.V1Transfers.Create(ctx, params)
}

func (s *StripePayments) ListTransfers(ctx context.Context, transferGroup string) ([]*stripe.Transfer, error) {
	list := s.sc.V1Transfers.List(ctx, &stripe.TransferListParams{
		TransferGroup: stripe.String(transferGroup),
	})
	transfers := make([]*stripe.Transfer, 0)
	var iterErr error
	list(func(tr *stripe.Transfer, err error) bool {
		if err != nil {
			iterErr = err
			return false
		}
		transfers = append(transfers, tr)
		return true
	})
	if iterErr != nil {
		return nil, iterErr
	}
	return transfers, nil
}

var payments PaymentsAPI

func GetPayments() PaymentsAPI {
	if payments != nil {
		return payments
	}
	payments = NewStripePayments(GetStripeClient())
	return payments
}

// NewPayments replaces the payments instance with a custom implementation
func NewPayments(p PaymentsAPI) PaymentsAPI {
	payments = p
	return payments
}
