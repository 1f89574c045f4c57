package payments

import (
	"context"
	"errors"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeChannel confirms card charges by looking up the PaymentIntent the
// client created. The reference on the charge is the intent id.
type StripeChannel struct {
	api *client.API
}

func NewStripeChannel(secretKey string) (*StripeChannel, error) {
	if secretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeChannel{api: api}, nil
}

func (s *StripeChannel) Confirm(ctx context.Context, c Charge) (Outcome, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Get(c.Reference, params)
	if err != nil {
		// A lookup we could not complete is not a decline.
		return OutcomePending, err
	}

	// The client controls the reference, so the intent's amount has to
	// match what is being recorded against the booking.
	if pi.Amount != c.Amount {
		return OutcomeFailed, nil
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return OutcomeConfirmed, nil
	case stripe.PaymentIntentStatusCanceled:
		return OutcomeFailed, nil
	default:
		// requires_action, processing and friends settle later.
		return OutcomePending, nil
	}
}

var _ Channel = (*StripeChannel)(nil)
