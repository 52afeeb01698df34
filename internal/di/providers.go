// Package di assembles the three services with google/wire.
package di

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"camerpulse/internal/chat/handler"
	"camerpulse/internal/chat/repository"
	"camerpulse/internal/chat/service"
	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/dbmongo"
	"camerpulse/internal/dbsql"
	"camerpulse/internal/media"
	"camerpulse/internal/notif"
	"camerpulse/internal/ratelimit"
	"camerpulse/internal/realtime"
	"camerpulse/internal/user"
)

// AuthSecret is the HMAC key shared by every service that checks bearer tokens.
type AuthSecret []byte

type ChatApp struct {
	Config  *config.Config
	Logger  *slog.Logger
	DB      *gorm.DB
	Router  *mux.Router
	Janitor *service.TypingJanitor
}

type NotifApp struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	Router *mux.Router
	Worker *notif.Worker
}

type MediaApp struct {
	Config *config.Config
	Logger *slog.Logger
	Server *media.Server
}

func ProvideConfig() *config.Config {
	return config.LoadConfig()
}

func ProvideLogger(cfg *config.Config) *slog.Logger {
	logger := common.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return logger
}

func ProvideAuthSecret(cfg *config.Config) (AuthSecret, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	return AuthSecret(cfg.Auth.JWTSecret), nil
}

func ProvideDatabase(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := dbsql.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// ProvideFeed uses NATS when enabled so views on other instances see writes;
// otherwise events stay in process.
func ProvideFeed(cfg *config.Config, logger *slog.Logger) (realtime.Feed, func(), error) {
	if !cfg.NATS.Enabled {
		feed := realtime.NewMemoryFeed()
		return feed, feed.Close, nil
	}
	feed, err := realtime.NewNATSFeed(cfg.NATS, logger)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("✅ Connected to NATS at %s", cfg.NATS.URL)
	return feed, feed.Close, nil
}

func ProvideTypingRepository(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (repository.TypingRepository, func()) {
	if cfg.Chat.TypingStore != "redis" {
		return repository.NewTypingRepository(db), func() {}
	}
	client := repository.NewRedisClient(cfg.Redis)
	return repository.NewRedisTypingRepository(client, cfg.Chat.TypingStaleAfter*2, logger), func() {
		_ = client.Close()
	}
}

func ProvideTypingRegistry(repo repository.TypingRepository, feed realtime.Feed, cfg config.ChatConfig, logger *slog.Logger) (*service.TypingRegistry, func()) {
	registry := service.NewTypingRegistry(repo, feed, cfg, logger)
	return registry, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		registry.Close(ctx)
	}
}

func ProvideTypingJanitor(repo repository.TypingRepository, registry *service.TypingRegistry, cfg config.ChatConfig, logger *slog.Logger) *service.TypingJanitor {
	return service.NewTypingJanitor(repo, cfg, logger).WithRegistry(registry)
}

// ProvideAttachmentStore returns a nil store when MongoDB is disabled.
func ProvideAttachmentStore(cfg *config.Config) (dbmongo.AttachmentStore, func(), error) {
	if !cfg.MongoDB.Enabled {
		log.Println("MongoDB disabled, attachment uploads unavailable")
		return nil, func() {}, nil
	}
	return ProvideMediaStore(cfg)
}

// ProvideMediaStore always connects; the media server has nothing to serve without it.
func ProvideMediaStore(cfg *config.Config) (dbmongo.AttachmentStore, func(), error) {
	client, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Close(ctx)
	}
	return dbmongo.NewAttachmentStore(client), cleanup, nil
}

func ProvideNotificationQueue(cfg *config.Config) (*notif.Queue, func()) {
	queue := notif.NewQueue(cfg)
	return queue, func() { _ = queue.Close() }
}

func ProvideLimiters(cfg config.ChatConfig) (handler.Limiters, func()) {
	limits := handler.Limiters{
		Send:      ratelimit.NewLimiterStore(cfg.SendRatePerMinute, cfg.SendBurst, 10*time.Minute),
		Keystroke: ratelimit.NewLimiterStore(cfg.KeystrokeRatePerMinute, cfg.KeystrokeBurst, 10*time.Minute),
	}
	return limits, limits.Stop
}

func ProvideChatRouter(h *handler.ChatHandler, ws *handler.WSHandler, profiles *user.Handler, secret AuthSecret, limits handler.Limiters) *mux.Router {
	return handler.NewRouter(h, ws, secret, limits, profiles)
}

func ProvideNotifRouter(h *notif.NotificationHandler, secret AuthSecret) *mux.Router {
	return notif.NewRouter(h, secret)
}

func ProvidePushSender(cfg *config.Config, devices notif.DeviceRepository, logger *slog.Logger) (notif.PushSender, error) {
	client, err := notif.NewFirebaseMessaging(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Println("Firebase disabled, push notifications will be skipped")
	}
	return notif.NewFCMPushSender(client, devices, logger), nil
}
