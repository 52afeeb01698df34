package realtime

import (
	"context"
	"log/slog"
	"time"
)

// FeedToaster shows toasts by publishing on the user's subject. Any open
// websocket session of that user forwards them.
type FeedToaster struct {
	feed   Feed
	logger *slog.Logger
}

func NewFeedToaster(feed Feed, logger *slog.Logger) *FeedToaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedToaster{feed: feed, logger: logger}
}

func (t *FeedToaster) Toast(ctx context.Context, userID, message string) {
	err := t.feed.Publish(ctx, UserSubject(userID), Event{
		Type:   EventToast,
		UserID: userID,
		Text:   message,
		At:     time.Now().UTC(),
	})
	if err != nil {
		t.logger.Warn("failed to publish toast", "user_id", userID, "error", err)
	}
}
