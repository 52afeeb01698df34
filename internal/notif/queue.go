package notif

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"camerpulse/internal/common"
	"camerpulse/internal/config"
)

const TypeDeliverNotification = "notification:deliver"

// Sender is what the worker needs from the Dispatcher.
type Sender interface {
	SendNotification(ctx context.Context, ev common.NotificationEvent) (Result, error)
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
}

func NewDeliverTask(ev common.NotificationEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification: %w", err)
	}
	return asynq.NewTask(TypeDeliverNotification, payload), nil
}

// Queue hands events to the notifs-svc worker. Tasks are never retried.
type Queue struct {
	client *asynq.Client
	queue  string
}

func NewQueue(cfg *config.Config) *Queue {
	return &Queue{
		client: asynq.NewClient(redisOpt(cfg.Redis)),
		queue:  queueName(cfg),
	}
}

func (q *Queue) Enqueue(ctx context.Context, ev common.NotificationEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	task, err := NewDeliverTask(ev)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task, asynq.Queue(q.queue), asynq.MaxRetry(0)); err != nil {
		return common.Remote("enqueue notification", err)
	}
	return nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender Sender
	logger *slog.Logger
}

func NewWorker(cfg *config.Config, sender Sender, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Notification.Workers
	if concurrency <= 0 {
		concurrency = 5
	}

	w := &Worker{sender: sender, logger: logger, mux: asynq.NewServeMux()}
	w.server = asynq.NewServer(redisOpt(cfg.Redis), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queueName(cfg): 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Warn("notification task failed", "type", task.Type(), "error", err)
		}),
	})
	w.mux.HandleFunc(TypeDeliverNotification, w.HandleDeliver)
	return w
}

// HandleDeliver runs one delivery. Every failure is final.
func (w *Worker) HandleDeliver(ctx context.Context, task *asynq.Task) error {
	var ev common.NotificationEvent
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return fmt.Errorf("invalid notification payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := w.sender.SendNotification(ctx, ev)
	if err != nil {
		return fmt.Errorf("notification %s %s: %v: %w", result.ID, result.Status, err, asynq.SkipRetry)
	}
	w.logger.Debug("notification task done", "id", result.ID, "status", result.Status)
	return nil
}

// Run blocks until ctx is cancelled, then shuts the server down.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start notification worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func queueName(cfg *config.Config) string {
	if cfg.Notification.Queue == "" {
		return "notifications"
	}
	return cfg.Notification.Queue
}
