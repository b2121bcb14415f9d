package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/field-service/internal/config"
	"github.com/spec-kit/field-service/internal/notify"
)

// NotificationWorker drains the Redis outbox and delivers messages to the
// WhatsApp gateway. Delivery is best-effort: after the configured number of
// attempts a message is dropped with a log entry, never blocking producers.
type NotificationWorker struct {
	client *redis.Client
	outbox *notify.RedisDispatcher
	cfg    config.NotificationConfig
	http   *http.Client
	logger *zap.Logger
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(client *redis.Client, outbox *notify.RedisDispatcher, cfg config.NotificationConfig, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		client: client,
		outbox: outbox,
		cfg:    cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Run consumes until the context is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("notification worker started",
		zap.String("queue", w.cfg.QueueKey),
		zap.String("gateway", w.cfg.GatewayURL))
	for {
		if ctx.Err() != nil {
			w.logger.Info("notification worker stopped")
			return
		}
		if moved, err := w.outbox.PopDue(ctx, time.Now().Unix()); err != nil {
			w.logger.Warn("scheduled scan failed", zap.Error(err))
		} else if moved > 0 {
			w.logger.Debug("scheduled notifications due", zap.Int("count", moved))
		}

		result, err := w.client.BRPop(ctx, w.cfg.PollInterval(), w.cfg.QueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warn("outbox pop failed", zap.Error(err))
			continue
		}
		if len(result) < 2 {
			continue
		}

		var msg notify.Message
		if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
			w.logger.Error("malformed outbox message dropped", zap.Error(err))
			continue
		}
		w.deliverWithRetry(ctx, msg)
	}
}

func (w *NotificationWorker) deliverWithRetry(ctx context.Context, msg notify.Message) {
	attempts := w.cfg.MaxDeliveryRetries
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = w.deliver(ctx, msg); lastErr == nil {
			w.logger.Info("notification delivered",
				zap.String("id", msg.ID),
				zap.String("kind", string(msg.Kind)),
				zap.Int64("ticket_id", msg.TicketID))
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	w.logger.Error("notification dropped after retries",
		zap.String("id", msg.ID),
		zap.String("kind", string(msg.Kind)),
		zap.Int64("ticket_id", msg.TicketID),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))
}

func (w *NotificationWorker) deliver(ctx context.Context, msg notify.Message) error {
	if w.cfg.GatewayURL == "" {
		w.logger.Debug("no gateway configured; dropping notification",
			zap.String("id", msg.ID),
			zap.String("kind", string(msg.Kind)))
		return nil
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
