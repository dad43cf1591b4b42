package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// PaymentOutcome is the gateway's verdict on a payment attempt.
type PaymentOutcome int

const (
	// PaymentOutcomePending means the gateway has not settled the attempt.
	PaymentOutcomePending PaymentOutcome = iota

	// PaymentOutcomeSuccess means the gateway confirmed the payment.
	PaymentOutcomeSuccess

	// PaymentOutcomeFailed means the gateway reported the attempt failed.
	PaymentOutcomeFailed
)

// PaymentIntent is a payment attempt registered with the gateway.
type PaymentIntent struct {
	// Reference is the gateway's identifier for the attempt. Stored on the
	// order so the webhook can be reconciled back to it.
	Reference string

	// RedirectURL is where the customer completes the payment.
	RedirectURL string
}

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	// Create registers a payment attempt for the given amount and returns
	// the intent the customer is redirected to.
	Create(ctx context.Context, orderID kernel.UUID, amount float64) (PaymentIntent, error)

	// Verify asks the gateway for the authoritative state of an attempt.
	// Reconciliation trusts this over webhook payloads.
	Verify(ctx context.Context, reference string) (PaymentOutcome, error)
}
