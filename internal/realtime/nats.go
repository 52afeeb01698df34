package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"camerpulse/internal/config"
)

// NATSFeed fans events out across service instances.
type NATSFeed struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewNATSFeed(cfg config.NATSConfig, logger *slog.Logger) (*NATSFeed, error) {
	opts := []nats.Option{
		nats.Name("camerpulse-chat"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("Disconnected from NATS", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.Timeout(10 * time.Second),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.URL, err)
	}

	return &NATSFeed{conn: conn, logger: logger}, nil
}

func (f *NATSFeed) Publish(ctx context.Context, subject string, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := f.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (f *NATSFeed) Subscribe(subject string, h Handler) (Subscription, error) {
	sub, err := f.conn.Subscribe(subject, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			f.logger.Warn("Dropping malformed event", "subject", msg.Subject, "error", err)
			return
		}
		h(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return sub, nil
}

func (f *NATSFeed) IsConnected() bool {
	return f.conn != nil && f.conn.IsConnected()
}

func (f *NATSFeed) Close() {
	if f.conn != nil {
		if err := f.conn.Drain(); err != nil {
			f.conn.Close()
		}
	}
}
