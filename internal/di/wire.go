//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"camerpulse/internal/chat/handler"
	"camerpulse/internal/chat/repository"
	"camerpulse/internal/chat/service"
	"camerpulse/internal/common"
	"camerpulse/internal/config"
	"camerpulse/internal/media"
	"camerpulse/internal/notif"
	"camerpulse/internal/realtime"
	"camerpulse/internal/user"
)

var baseSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	wire.FieldsOf(new(*config.Config), "Chat"),
)

var chatSet = wire.NewSet(
	baseSet,
	ProvideDatabase,
	ProvideFeed,
	ProvideNotificationQueue,
	wire.Bind(new(common.NotificationQueue), new(*notif.Queue)),
	repository.NewChatRepository,
	repository.NewReceiptRepository,
	ProvideTypingRepository,
	service.NewMessageSync,
	service.NewReadReceipts,
	service.NewTypingMonitor,
	ProvideTypingRegistry,
	ProvideTypingJanitor,
	wire.Bind(new(handler.TypingReader), new(*service.TypingMonitor)),
	wire.Bind(new(handler.TypingWriter), new(*service.TypingRegistry)),
	ProvideAttachmentStore,
	user.NewProfileRepository,
	user.NewUserService,
	user.NewHandler,
	handler.NewChatHandler,
	handler.ViewSessions,
	ProvideLimiters,
	handler.NewWSHandler,
	ProvideAuthSecret,
	ProvideChatRouter,
	wire.Struct(new(ChatApp), "*"),
)

var notifSet = wire.NewSet(
	baseSet,
	ProvideDatabase,
	ProvideFeed,
	realtime.NewFeedToaster,
	wire.Bind(new(common.Toaster), new(*realtime.FeedToaster)),
	notif.NewPreferenceRepository,
	notif.NewDeviceRepository,
	notif.NewNotificationLogRepository,
	notif.NewResendEmailSender,
	ProvidePushSender,
	notif.NewDispatcher,
	wire.Bind(new(notif.NotificationService), new(*notif.Dispatcher)),
	wire.Bind(new(notif.Sender), new(*notif.Dispatcher)),
	ProvideNotificationQueue,
	wire.Bind(new(common.NotificationQueue), new(*notif.Queue)),
	notif.NewNotificationHandler,
	notif.NewWorker,
	ProvideAuthSecret,
	ProvideNotifRouter,
	wire.Struct(new(NotifApp), "*"),
)

func InitializeChatApp() (*ChatApp, func(), error) {
	wire.Build(chatSet)
	return nil, nil, nil
}

func InitializeNotifApp() (*NotifApp, func(), error) {
	wire.Build(notifSet)
	return nil, nil, nil
}

func InitializeMediaApp() (*MediaApp, func(), error) {
	wire.Build(
		baseSet,
		ProvideMediaStore,
		media.NewServer,
		wire.Struct(new(MediaApp), "*"),
	)
	return nil, nil, nil
}
