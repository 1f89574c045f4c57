package payments

import "context"

// Outcome is the channel's verdict on a charge. Only Confirmed may mark a
// payment completed; everything a channel cannot vouch for synchronously
// stays pending until the explicit confirmation path runs.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomePending   Outcome = "pending"
	OutcomeFailed    Outcome = "failed"
)

type Charge struct {
	Method    string
	Amount    int64
	Reference string
}

// Channel verifies a charge against its payment provider.
type Channel interface {
	Confirm(ctx context.Context, c Charge) (Outcome, error)
}

// Offline handles methods with no provider to ask (cash, bank transfer).
// It never confirms synchronously.
type Offline struct{}

func (Offline) Confirm(context.Context, Charge) (Outcome, error) {
	return OutcomePending, nil
}

// Router picks a channel by payment method. Card payments with a provider
// reference go to stripe; everything else is offline.
type Router struct {
	Stripe  Channel
	Offline Channel
}

func (r Router) Confirm(ctx context.Context, c Charge) (Outcome, error) {
	if r.Stripe != nil && c.Reference != "" && (c.Method == "card" || c.Method == "stripe") {
		return r.Stripe.Confirm(ctx, c)
	}
	return r.Offline.Confirm(ctx, c)
}
