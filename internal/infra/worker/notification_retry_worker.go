package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type notificationRetrier interface {
	RetryPendingNotifications(ctx context.Context, window time.Duration) (int, error)
}

// NotificationRetryWorker resends lead messages whose first send failed.
type NotificationRetryWorker struct {
	retrier      notificationRetrier
	window       time.Duration
	tickInterval time.Duration
	log          logrus.FieldLogger
}

func NewNotificationRetryWorker(retrier notificationRetrier, log logrus.FieldLogger) *NotificationRetryWorker {
	return &NotificationRetryWorker{
		retrier:      retrier,
		window:       24 * time.Hour,
		tickInterval: 5 * time.Minute,
		log:          log.WithField("component", "notification_retry_worker"),
	}
}

func (w *NotificationRetryWorker) Start(ctx context.Context) {
	w.log.WithField("window", w.window).Info("🕒 Notification retry worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Notification retry worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *NotificationRetryWorker) runOnce(ctx context.Context) {
	n, err := w.retrier.RetryPendingNotifications(ctx, w.window)
	if err != nil {
		w.log.WithError(err).Error("❌ Pending notification scan failed")
		return
	}
	if n > 0 {
		w.log.WithField("delivered", n).Info("✅ Pending lead notifications delivered")
	}
}
