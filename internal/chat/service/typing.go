package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"camerpulse/internal/chat/repository"
	"camerpulse/internal/config"
	"camerpulse/internal/dbsql"
	"camerpulse/internal/realtime"
)

type TypingState int

const (
	TypingIdle TypingState = iota
	TypingActive
)

func (s TypingState) String() string {
	if s == TypingActive {
		return "typing"
	}
	return "idle"
}

// background writes (timer expiry, teardown) run detached from any request
const typingWriteTimeout = 5 * time.Second

var ErrTrackerClosed = errors.New("typing tracker closed")

// TypingTracker publishes one user's typing state for the conversation
// they have open. A burst of keystrokes yields one announced upsert when it
// starts and one seq-guarded delete after TypingTimeout of silence. Long
// bursts also rewrite last_activity every half silence window, unannounced,
// so the row never looks stale while the user is still typing.
type TypingTracker struct {
	repo         repository.TypingRepository
	feed         realtime.Feed
	userID       string
	timeout      time.Duration
	refreshEvery time.Duration
	logger       *slog.Logger
	now          func() time.Time

	mu             sync.Mutex
	conversationID string
	state          TypingState
	seq            int64
	lastWrite      time.Time
	timer          *time.Timer
	timerGen       uint64
	closed         bool
}

func NewTypingTracker(
	repo repository.TypingRepository,
	feed realtime.Feed,
	userID string,
	cfg config.ChatConfig,
	logger *slog.Logger,
) *TypingTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &TypingTracker{
		repo:         repo,
		feed:         feed,
		userID:       userID,
		timeout:      cfg.TypingTimeout,
		refreshEvery: cfg.TypingStaleAfter / 2,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (t *TypingTracker) State() TypingState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetConversation forces Idle on the current conversation and switches.
func (t *TypingTracker) SetConversation(ctx context.Context, conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.goIdleLocked(ctx)
	t.conversationID = conversationID
}

// Keystroke moves Idle to Typing, or rearms the timer while Typing.
func (t *TypingTracker) Keystroke(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTrackerClosed
	}
	if t.conversationID == "" {
		return nil
	}

	now := t.now()
	switch {
	case t.state == TypingIdle:
		t.state = TypingActive
		t.seq = nextSeq(t.seq, now)
		t.writeLocked(ctx, now)
		t.announce(ctx, now)
	case t.refreshEvery > 0 && now.Sub(t.lastWrite) >= t.refreshEvery:
		// same seq: the pending delete of this burst must still match
		t.writeLocked(ctx, now)
	}

	t.armLocked()
	return nil
}

func (t *TypingTracker) writeLocked(ctx context.Context, now time.Time) {
	t.lastWrite = now
	err := t.repo.Upsert(ctx, &dbsql.TypingIndicator{
		ConversationID: t.conversationID,
		UserID:         t.userID,
		IsTyping:       true,
		LastActivity:   now,
		Seq:            t.seq,
	})
	if err != nil {
		t.logger.Debug("Typing upsert failed", "conversation", t.conversationID, "user", t.userID, "error", err)
	}
}

// Close forces Idle and stops the pending timer for good.
func (t *TypingTracker) Close(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.goIdleLocked(ctx)
	t.closed = true
}

// closeIfIdle retires the tracker unless a burst is in progress.
func (t *TypingTracker) closeIfIdle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TypingIdle {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.timerGen++
	t.closed = true
	return true
}

func (t *TypingTracker) armLocked() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timerGen++
	gen := t.timerGen
	t.timer = time.AfterFunc(t.timeout, func() { t.expire(gen) })
}

func (t *TypingTracker) expire(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// a later keystroke or teardown rearmed or cleared the timer
	if gen != t.timerGen {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), typingWriteTimeout)
	defer cancel()
	t.goIdleLocked(ctx)
}

func (t *TypingTracker) goIdleLocked(ctx context.Context) {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.timerGen++

	if t.state != TypingActive {
		return
	}
	t.state = TypingIdle

	if err := t.repo.Delete(ctx, t.conversationID, t.userID, t.seq); err != nil {
		t.logger.Debug("Typing delete failed", "conversation", t.conversationID, "user", t.userID, "error", err)
	}
	t.announce(ctx, t.now())
}

func (t *TypingTracker) announce(ctx context.Context, at time.Time) {
	err := t.feed.Publish(ctx, realtime.ConversationSubject(t.conversationID), realtime.Event{
		Type:           realtime.EventTypingUpdated,
		ConversationID: t.conversationID,
		UserID:         t.userID,
		At:             at,
	})
	if err != nil {
		t.logger.Debug("Typing event publish failed", "conversation", t.conversationID, "error", err)
	}
}

// nextSeq is strictly increasing per tracker and roughly ordered across
// trackers. Microseconds keep it exact inside a Lua number.
func nextSeq(prev int64, now time.Time) int64 {
	seq := now.UnixMicro()
	if seq <= prev {
		seq = prev + 1
	}
	return seq
}

type Typer struct {
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	LastActivity time.Time `json:"last_activity"`
}

// TypingMonitor aggregates the other participants' typing state.
type TypingMonitor struct {
	repo       repository.TypingRepository
	chat       repository.ChatRepository
	staleAfter time.Duration
	now        func() time.Time
}

func NewTypingMonitor(repo repository.TypingRepository, chat repository.ChatRepository, cfg config.ChatConfig) *TypingMonitor {
	return &TypingMonitor{
		repo:       repo,
		chat:       chat,
		staleAfter: cfg.TypingStaleAfter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Typers lists who is typing in the conversation, never the viewer.
// Rows past the silence window count as absent whatever they store.
func (m *TypingMonitor) Typers(ctx context.Context, viewerID, conversationID string) ([]Typer, error) {
	now := m.now()
	rows, err := m.repo.Active(ctx, conversationID, now.Add(-m.staleAfter))
	if err != nil {
		return nil, err
	}

	active := make([]*dbsql.TypingIndicator, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.UserID == viewerID || !row.ActiveAt(now, m.staleAfter) {
			continue
		}
		active = append(active, row)
		ids = append(ids, row.UserID)
	}
	if len(active) == 0 {
		return []Typer{}, nil
	}

	profiles, err := m.chat.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	typers := make([]Typer, 0, len(active))
	for _, row := range active {
		name := unknownSender
		if p := profiles[row.UserID]; p != nil && p.DisplayName != "" {
			name = p.DisplayName
		}
		typers = append(typers, Typer{UserID: row.UserID, Name: name, LastActivity: row.LastActivity})
	}
	return typers, nil
}

// TypingText renders the "X is typing" line.
func TypingText(typers []Typer) string {
	switch len(typers) {
	case 0:
		return ""
	case 1:
		return typers[0].Name + " is typing..."
	case 2:
		return "2 people are typing..."
	default:
		return "Several people are typing..."
	}
}

// TypingJanitor periodically asks the store to purge stale indicators.
type TypingJanitor struct {
	repo       repository.TypingRepository
	registry   *TypingRegistry
	interval   time.Duration
	staleAfter time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewTypingJanitor(repo repository.TypingRepository, cfg config.ChatConfig, logger *slog.Logger) *TypingJanitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TypingJanitor{
		repo:       repo,
		interval:   cfg.TypingCleanupInterval,
		staleAfter: cfg.TypingStaleAfter,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithRegistry makes each sweep also drop idle HTTP trackers.
func (j *TypingJanitor) WithRegistry(r *TypingRegistry) *TypingJanitor {
	j.registry = r
	return j
}

func (j *TypingJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Typing janitor started", "interval", j.interval)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Typing janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

func (j *TypingJanitor) Sweep(ctx context.Context) int64 {
	if j.registry != nil {
		j.registry.Prune(ctx)
	}

	n, err := j.repo.CleanupStale(ctx, j.now().Add(-j.staleAfter))
	if err != nil {
		j.logger.Warn("Typing cleanup failed", "error", err)
		return 0
	}
	if n > 0 {
		j.logger.Debug("Purged stale typing indicators", "count", n)
	}
	return n
}
