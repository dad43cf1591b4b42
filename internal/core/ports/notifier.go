package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// Notification is a push message addressed to a platform user.
type Notification struct {
	RecipientID kernel.UUID
	Title       string
	Body        string
	// Data carries machine-readable context, such as the order id.
	Data map[string]string
}

// Notifier delivers push notifications. Delivery is best effort: callers
// treat failures as logged noise, never as a reason to fail the command
// that triggered them.
type Notifier interface {
	Notify(ctx context.Context, notification Notification)
}
