package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/dbsql"
)

// memStore is an in-memory ChatRepository, ReceiptRepository and
// TypingRepository with the same semantics as the SQL ones.
type memStore struct {
	mu       sync.Mutex
	convs    map[string]*dbsql.Conversation
	byKey    map[string]string
	members  map[string]map[string]bool
	messages []*dbsql.Message
	receipts map[string]map[string]time.Time
	typing   map[string]*dbsql.TypingIndicator
	profiles map[string]*dbsql.Profile
	upserts  int
	deletes  int
}

func newMemStore() *memStore {
	return &memStore{
		convs:    make(map[string]*dbsql.Conversation),
		byKey:    make(map[string]string),
		members:  make(map[string]map[string]bool),
		receipts: make(map[string]map[string]time.Time),
		typing:   make(map[string]*dbsql.TypingIndicator),
		profiles: make(map[string]*dbsql.Profile),
	}
}

func (s *memStore) addProfile(userID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = &dbsql.Profile{UserID: userID, DisplayName: name}
}

func (s *memStore) receiptCount(messageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receipts[messageID])
}

func (s *memStore) FindOrCreateConversation(_ context.Context, conv *dbsql.Conversation, participantIDs []string) (*dbsql.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey[conv.ParticipantKey]; ok {
		return s.convs[id], false, nil
	}
	conv.CreatedAt = time.Now().UTC()
	s.convs[conv.ID] = conv
	s.byKey[conv.ParticipantKey] = conv.ID
	s.members[conv.ID] = make(map[string]bool)
	for _, id := range participantIDs {
		s.members[conv.ID][id] = true
	}
	return conv, true, nil
}

func (s *memStore) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[conversationID][userID], nil
}

func (s *memStore) Participants(_ context.Context, conversationID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.members[conversationID]))
	for id := range s.members[conversationID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memStore) SaveMessage(_ context.Context, msg *dbsql.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *msg
	s.messages = append(s.messages, &c)
	return nil
}

func (s *memStore) FetchHistory(ctx context.Context, conversationID string) ([]*dbsql.Message, error) {
	return s.FetchSince(ctx, conversationID, time.Time{})
}

func (s *memStore) FetchSince(_ context.Context, conversationID string, since time.Time) ([]*dbsql.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*dbsql.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID && !m.CreatedAt.Before(since) {
			c := *m
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) ProfilesByIDs(_ context.Context, userIDs []string) (map[string]*dbsql.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*dbsql.Profile)
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *memStore) MarkMessageRead(_ context.Context, messageID, userID string, at time.Time) (*dbsql.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var msg *dbsql.Message
	for _, m := range s.messages {
		if m.ID == messageID {
			msg = m
		}
	}
	if msg == nil || !s.members[msg.ConversationID][userID] {
		return nil, false, fmt.Errorf("message %s: %w", messageID, common.ErrNotFound)
	}
	c := *msg
	if msg.SenderID == userID {
		return &c, false, nil
	}
	if s.receipts[messageID] == nil {
		s.receipts[messageID] = make(map[string]time.Time)
	}
	if _, ok := s.receipts[messageID][userID]; ok {
		return &c, false, nil
	}
	s.receipts[messageID][userID] = at
	return &c, true, nil
}

func (s *memStore) ReadMessageIDs(_ context.Context, userID string, messageIDs []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool)
	for _, id := range messageIDs {
		if _, ok := s.receipts[id][userID]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (s *memStore) UnreadCount(_ context.Context, conversationID, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.messages {
		if m.ConversationID != conversationID || m.SenderID == userID {
			continue
		}
		if _, ok := s.receipts[m.ID][userID]; !ok {
			n++
		}
	}
	return n, nil
}

func (s *memStore) Upsert(_ context.Context, ind *dbsql.TypingIndicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *ind
	s.typing[ind.ConversationID+"|"+ind.UserID] = &c
	s.upserts++
	return nil
}

func (s *memStore) Delete(_ context.Context, conversationID, userID string, maxSeq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := conversationID + "|" + userID
	if row, ok := s.typing[key]; ok && row.Seq <= maxSeq {
		delete(s.typing, key)
	}
	s.deletes++
	return nil
}

func (s *memStore) Active(_ context.Context, conversationID string, since time.Time) ([]*dbsql.TypingIndicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*dbsql.TypingIndicator
	for _, row := range s.typing {
		if row.ConversationID == conversationID && row.IsTyping && !row.LastActivity.Before(since) {
			c := *row
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) CleanupStale(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, row := range s.typing {
		if row.LastActivity.Before(before) {
			delete(s.typing, key)
			n++
		}
	}
	return n, nil
}

type recordingQueue struct {
	mu     sync.Mutex
	events []common.NotificationEvent
	err    error
}

func (q *recordingQueue) Enqueue(_ context.Context, ev common.NotificationEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, ev)
	return nil
}

func (q *recordingQueue) recorded() []common.NotificationEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]common.NotificationEvent(nil), q.events...)
}

type recordingListener struct {
	mu        sync.Mutex
	snapshots []Snapshot
	errs      []error
}

func (l *recordingListener) OnSnapshot(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshots = append(l.snapshots, s)
}

func (l *recordingListener) OnError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *recordingListener) last() (Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.snapshots) == 0 {
		return Snapshot{}, false
	}
	return l.snapshots[len(l.snapshots)-1], true
}

func (l *recordingListener) all() []Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Snapshot(nil), l.snapshots...)
}

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		MaxMessageLength:      200,
		TypingTimeout:         150 * time.Millisecond,
		TypingStaleAfter:      2 * time.Second,
		TypingCleanupInterval: 20 * time.Millisecond,
	}
}
