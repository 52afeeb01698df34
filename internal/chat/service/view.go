package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"camerpulse/internal/common"
	"camerpulse/internal/realtime"
)

var ErrViewClosed = errors.New("conversation view closed")

// Snapshot is what a mounted conversation screen shows.
type Snapshot struct {
	ConversationID string         `json:"conversation_id"`
	Messages       []*MessageView `json:"messages"`
	Typers         []Typer        `json:"typers"`
	TypingText     string         `json:"typing_text"`
	Unread         int64          `json:"unread"`
}

// ViewListener receives projections of the store and user-facing failures.
// Calls come from the view's event loop, one at a time.
type ViewListener interface {
	OnSnapshot(Snapshot)
	OnError(err error)
}

// ViewDeps groups the collaborators a ConversationView projects.
type ViewDeps struct {
	Sync     MessageSync
	Receipts ReadReceipts
	Monitor  *TypingMonitor
	Tracker  *TypingTracker
	Feed     realtime.Feed
	Merge    bool
	Logger   *slog.Logger
}

// ConversationView is one user's open conversation. Change events are
// coalesced and applied serially on a single loop goroutine; every mount
// gets a generation token and results from an older mount are dropped.
type ConversationView struct {
	userID   string
	deps     ViewDeps
	listener ViewListener
	logger   *slog.Logger

	mu             sync.Mutex
	gen            uint64
	conversationID string
	mountCtx       context.Context
	cancel         context.CancelFunc
	sub            realtime.Subscription
	messages       []*MessageView
	typers         []Typer
	unread         int64
	lastSize       int
	needFull       bool
	needNew        bool
	needTypers     bool
	closed         bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func NewConversationView(userID string, deps ViewDeps, listener ViewListener) *ConversationView {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	v := &ConversationView{
		userID:   userID,
		deps:     deps,
		listener: listener,
		logger:   logger.With("user", userID),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go v.run()
	return v
}

// Open mounts a conversation: the previous subscription is closed, typing
// is torn down, and a full load is scheduled.
func (v *ConversationView) Open(conversationID string) error {
	if err := common.ValidateID("conversation id", conversationID); err != nil {
		return err
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	v.unmountLocked()
	v.gen++
	gen := v.gen
	v.conversationID = conversationID
	v.mountCtx, v.cancel = context.WithCancel(context.Background())
	v.messages = nil
	v.typers = nil
	v.unread = 0
	v.lastSize = 0
	v.needFull = true
	v.needTypers = true
	ctx := v.mountCtx
	v.mu.Unlock()

	v.deps.Tracker.SetConversation(ctx, conversationID)

	sub, err := v.deps.Feed.Subscribe(realtime.ConversationSubject(conversationID), v.handlerFor(gen))
	if err != nil {
		return fmt.Errorf("failed to subscribe to conversation %s: %w", conversationID, err)
	}

	v.mu.Lock()
	if v.gen != gen || v.closed {
		v.mu.Unlock()
		_ = sub.Unsubscribe()
		return nil
	}
	v.sub = sub
	v.mu.Unlock()

	v.signal()
	return nil
}

func (v *ConversationView) ConversationID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conversationID
}

func (v *ConversationView) Send(ctx context.Context, content string) error {
	conversationID, err := v.current()
	if err != nil {
		return err
	}
	return v.deps.Sync.Send(ctx, v.userID, conversationID, content)
}

func (v *ConversationView) Keystroke(ctx context.Context) error {
	if _, err := v.current(); err != nil {
		return err
	}
	return v.deps.Tracker.Keystroke(ctx)
}

// Snapshot returns the current projection.
func (v *ConversationView) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Close unmounts, cancels in-flight loads and stops the loop.
func (v *ConversationView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.unmountLocked()
	v.gen++
	v.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), typingWriteTimeout)
	defer cancel()
	v.deps.Tracker.Close(ctx)

	close(v.quit)
	<-v.done
}

func (v *ConversationView) current() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return "", ErrViewClosed
	}
	if v.conversationID == "" {
		return "", fmt.Errorf("no conversation open: %w", common.ErrValidation)
	}
	return v.conversationID, nil
}

func (v *ConversationView) unmountLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	if v.sub != nil {
		if err := v.sub.Unsubscribe(); err != nil {
			v.logger.Debug("Unsubscribe failed", "conversation", v.conversationID, "error", err)
		}
		v.sub = nil
	}
	v.needFull, v.needNew, v.needTypers = false, false, false
}

// handlerFor must not block: it may run on the publisher's goroutine.
func (v *ConversationView) handlerFor(gen uint64) realtime.Handler {
	return func(ev realtime.Event) {
		v.mu.Lock()
		if gen != v.gen || v.closed {
			v.mu.Unlock()
			return
		}
		switch ev.Type {
		case realtime.EventMessageCreated:
			v.needNew = true
		case realtime.EventReceiptUpdated:
			v.needFull = true
		case realtime.EventTypingUpdated:
			if ev.UserID == v.userID {
				v.mu.Unlock()
				return
			}
			v.needTypers = true
		default:
			v.mu.Unlock()
			return
		}
		v.mu.Unlock()
		v.signal()
	}
}

func (v *ConversationView) signal() {
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

func (v *ConversationView) run() {
	defer close(v.done)
	for {
		select {
		case <-v.quit:
			return
		case <-v.wake:
			v.step()
		}
	}
}

type viewWork struct {
	gen            uint64
	ctx            context.Context
	conversationID string
	full, newOnly  bool
	typers         bool
	since          time.Time
	current        []*MessageView
}

func (v *ConversationView) step() {
	v.mu.Lock()
	if v.closed || v.mountCtx == nil {
		v.mu.Unlock()
		return
	}
	w := viewWork{
		gen:            v.gen,
		ctx:            v.mountCtx,
		conversationID: v.conversationID,
		full:           v.needFull,
		newOnly:        v.needNew,
		typers:         v.needTypers,
		current:        v.messages,
	}
	if n := len(v.messages); n > 0 {
		w.since = v.messages[n-1].CreatedAt
	}
	v.needFull, v.needNew, v.needTypers = false, false, false
	v.mu.Unlock()

	changed := false
	if w.full || w.newOnly {
		changed = v.reload(w) || changed
	}
	if w.typers {
		changed = v.refreshTypers(w) || changed
	}
	if !changed {
		return
	}

	v.mu.Lock()
	if w.gen != v.gen {
		v.mu.Unlock()
		return
	}
	snap := v.snapshotLocked()
	v.mu.Unlock()
	v.listener.OnSnapshot(snap)
}

// reload re-fetches history, auto-marks inbound messages read when the set
// changed size and refreshes the unread count.
func (v *ConversationView) reload(w viewWork) bool {
	var (
		messages []*MessageView
		err      error
	)
	if v.deps.Merge && !w.full && len(w.current) > 0 {
		var fresh []*MessageView
		fresh, err = v.deps.Sync.LoadSince(w.ctx, v.userID, w.conversationID, w.since)
		if err == nil {
			messages = MergeMessages(w.current, fresh)
		}
	} else {
		messages, err = v.deps.Sync.Load(w.ctx, v.userID, w.conversationID)
	}
	if w.ctx.Err() != nil {
		return false
	}
	if err != nil {
		v.logger.Warn("Conversation load failed", "conversation", w.conversationID, "error", err)
		v.listener.OnError(err)
		return false
	}

	// receipts flip IsRead, so work on views no snapshot has handed out
	messages = cloneViews(messages)

	v.mu.Lock()
	if w.gen != v.gen {
		v.mu.Unlock()
		return false
	}
	sizeChanged := len(messages) != v.lastSize
	v.lastSize = len(messages)
	v.mu.Unlock()

	if sizeChanged {
		v.deps.Receipts.MarkAllRead(w.ctx, v.userID, messages)
	}

	unread, err := v.deps.Receipts.UnreadCount(w.ctx, v.userID, w.conversationID)
	if err != nil {
		v.logger.Debug("Unread count failed", "conversation", w.conversationID, "error", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if w.gen != v.gen {
		return false
	}
	v.messages = messages
	if err == nil {
		v.unread = unread
	}
	return true
}

func (v *ConversationView) refreshTypers(w viewWork) bool {
	typers, err := v.deps.Monitor.Typers(w.ctx, v.userID, w.conversationID)
	if w.ctx.Err() != nil {
		return false
	}
	if err != nil {
		v.logger.Debug("Typing aggregation failed", "conversation", w.conversationID, "error", err)
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if w.gen != v.gen {
		return false
	}
	v.typers = typers
	return true
}

func (v *ConversationView) snapshotLocked() Snapshot {
	messages := make([]*MessageView, len(v.messages))
	copy(messages, v.messages)
	typers := make([]Typer, len(v.typers))
	copy(typers, v.typers)
	return Snapshot{
		ConversationID: v.conversationID,
		Messages:       messages,
		Typers:         typers,
		TypingText:     TypingText(typers),
		Unread:         v.unread,
	}
}

func cloneViews(in []*MessageView) []*MessageView {
	out := make([]*MessageView, len(in))
	for i, m := range in {
		c := *m
		out[i] = &c
	}
	return out
}
