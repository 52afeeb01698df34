package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"camerpulse/internal/chat/repository"
	"camerpulse/internal/config"
	"camerpulse/internal/realtime"
)

// TypingRegistry keeps a tracker per user and conversation for callers
// without a long-lived session, such as the HTTP keystroke route.
type TypingRegistry struct {
	repo   repository.TypingRepository
	feed   realtime.Feed
	cfg    config.ChatConfig
	logger *slog.Logger

	mu       sync.Mutex
	trackers map[string]*TypingTracker
}

func NewTypingRegistry(repo repository.TypingRepository, feed realtime.Feed, cfg config.ChatConfig, logger *slog.Logger) *TypingRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &TypingRegistry{
		repo:     repo,
		feed:     feed,
		cfg:      cfg,
		logger:   logger,
		trackers: make(map[string]*TypingTracker),
	}
}

// Keystroke runs outside the registry lock; only the lookup is serialised.
func (r *TypingRegistry) Keystroke(ctx context.Context, userID, conversationID string) error {
	t := r.tracker(ctx, userID, conversationID)
	err := t.Keystroke(ctx)
	if errors.Is(err, ErrTrackerClosed) {
		// retired between lookup and use
		r.forget(userID, conversationID, t)
		err = r.tracker(ctx, userID, conversationID).Keystroke(ctx)
	}
	return err
}

func (r *TypingRegistry) forget(userID, conversationID string, t *TypingTracker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userID + "|" + conversationID
	if r.trackers[key] == t {
		delete(r.trackers, key)
	}
}

func (r *TypingRegistry) tracker(ctx context.Context, userID, conversationID string) *TypingTracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userID + "|" + conversationID
	t, ok := r.trackers[key]
	if !ok {
		t = NewTypingTracker(r.repo, r.feed, userID, r.cfg, r.logger)
		t.SetConversation(ctx, conversationID)
		r.trackers[key] = t
	}
	return t
}

// Prune drops trackers that went back to Idle.
func (r *TypingRegistry) Prune(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for key, t := range r.trackers {
		if !t.closeIfIdle() {
			continue
		}
		delete(r.trackers, key)
		pruned++
	}
	return pruned
}

func (r *TypingRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

// Close forces every tracker Idle.
func (r *TypingRegistry) Close(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, t := range r.trackers {
		t.Close(ctx)
		delete(r.trackers, key)
	}
}
