package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

const uploadTimeout = 30 * time.Second

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  consumer
	Uploader usecase.ConversionUploader
	Log      logrus.FieldLogger
}

func NewWorker(ch *amqp.Channel, uploader usecase.ConversionUploader, log logrus.FieldLogger) *Worker {
	return &Worker{Channel: ch, Uploader: uploader, Log: log.WithField("component", "conversion_worker")}
}

// Start consumes until ctx is cancelled or the channel closes. Failed uploads
// are rejected without requeue and land in the dead-letter queue.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Log.WithField("queue", queueName).Info("🐇 Conversion worker waiting for messages")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if w.handle(ctx, d.Body) {
				d.Ack(false)
			} else {
				d.Nack(false, false)
			}
		}
	}
}

// handle reports whether the delivery should be acknowledged.
func (w *Worker) handle(ctx context.Context, body []byte) bool {
	var event entity.ConversionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		w.Log.WithError(err).Error("❌ Conversion message is not valid JSON")
		return false
	}

	uctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	return usecase.UploadAndLog(uctx, w.Uploader, w.Log, event).Success
}
