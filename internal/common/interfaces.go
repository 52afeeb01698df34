package common

import (
	"context"
)

// NotificationQueue hands an event to the out-of-band dispatcher.
type NotificationQueue interface {
	Enqueue(ctx context.Context, event NotificationEvent) error
}

// Toaster shows a short, non-blocking message to a user.
type Toaster interface {
	Toast(ctx context.Context, userID, message string)
}
