package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"camerpulse/internal/config"
	"camerpulse/internal/dbsql"
)

const (
	typingKeyPrefix = "camerpulse:typing:"
	typingIndexKey  = "camerpulse:typing:index"
)

// deleteIfNotNewer drops the hash field only while the stored seq is not
// newer than ARGV[2].
var deleteIfNotNewer = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], ARGV[1])
if not v then return 0 end
local d = cjson.decode(v)
if tonumber(d.seq) > tonumber(ARGV[2]) then return 0 end
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('ZREM', KEYS[2], ARGV[3])
return 1
`)

// purgeBefore derives hash keys from ARGV, so it runs on a single node or
// sentinel setup only, not Redis Cluster.
var purgeBefore = redis.NewScript(`
local members = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for _, m in ipairs(members) do
  local sep = string.find(m, '|', 1, true)
  if sep then
    redis.call('HDEL', ARGV[2] .. string.sub(m, 1, sep - 1), string.sub(m, sep + 1))
  end
  redis.call('ZREM', KEYS[1], m)
end
return #members
`)

type redisTypingRepo struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisClient opens the go-redis client used by the typing store.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// NewRedisTypingRepository keeps one hash per conversation and a sorted
// set of every indicator by last activity for the janitor. Conversation
// hashes expire after ttl without writes.
func NewRedisTypingRepository(client *redis.Client, ttl time.Duration, logger *slog.Logger) TypingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisTypingRepo{client: client, ttl: ttl, logger: logger}
}

type typingEntry struct {
	IsTyping     bool  `json:"is_typing"`
	LastActivity int64 `json:"last_activity"`
	Seq          int64 `json:"seq"`
}

func typingKey(conversationID string) string {
	return typingKeyPrefix + conversationID
}

func indexMember(conversationID, userID string) string {
	return conversationID + "|" + userID
}

func (r *redisTypingRepo) Upsert(ctx context.Context, ind *dbsql.TypingIndicator) error {
	data, err := json.Marshal(typingEntry{
		IsTyping:     ind.IsTyping,
		LastActivity: ind.LastActivity.UnixMilli(),
		Seq:          ind.Seq,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal typing indicator: %w", err)
	}

	key := typingKey(ind.ConversationID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, ind.UserID, data)
	pipe.Expire(ctx, key, r.ttl)
	pipe.ZAdd(ctx, typingIndexKey, redis.Z{
		Score:  float64(ind.LastActivity.UnixMilli()),
		Member: indexMember(ind.ConversationID, ind.UserID),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert typing indicator: %w", err)
	}
	return nil
}

func (r *redisTypingRepo) Delete(ctx context.Context, conversationID, userID string, maxSeq int64) error {
	err := deleteIfNotNewer.Run(ctx, r.client,
		[]string{typingKey(conversationID), typingIndexKey},
		userID, maxSeq, indexMember(conversationID, userID),
	).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to delete typing indicator: %w", err)
	}
	return nil
}

func (r *redisTypingRepo) Active(ctx context.Context, conversationID string, since time.Time) ([]*dbsql.TypingIndicator, error) {
	fields, err := r.client.HGetAll(ctx, typingKey(conversationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get typing indicators: %w", err)
	}

	rows := make([]*dbsql.TypingIndicator, 0, len(fields))
	for userID, raw := range fields {
		var e typingEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			r.logger.Warn("Skipping malformed typing entry", "conversation", conversationID, "user", userID, "error", err)
			continue
		}
		at := time.UnixMilli(e.LastActivity).UTC()
		if !e.IsTyping || at.Before(since) {
			continue
		}
		rows = append(rows, &dbsql.TypingIndicator{
			ConversationID: conversationID,
			UserID:         userID,
			IsTyping:       true,
			LastActivity:   at,
			Seq:            e.Seq,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LastActivity.After(rows[j].LastActivity)
	})
	return rows, nil
}

func (r *redisTypingRepo) CleanupStale(ctx context.Context, before time.Time) (int64, error) {
	n, err := purgeBefore.Run(ctx, r.client,
		[]string{typingIndexKey},
		"("+strconv.FormatInt(before.UnixMilli(), 10), typingKeyPrefix,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup typing indicators: %w", err)
	}
	return n, nil
}
