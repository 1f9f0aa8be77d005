package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/metrics"
)

const defaultUploadTimeout = 20 * time.Second

// DirectConversionDispatcher uploads in a background goroutine. It is used
// when no queue is configured.
type DirectConversionDispatcher struct {
	Uploader ConversionUploader
	Log      logrus.FieldLogger
	Timeout  time.Duration
}

func NewDirectConversionDispatcher(uploader ConversionUploader, log logrus.FieldLogger) *DirectConversionDispatcher {
	return &DirectConversionDispatcher{Uploader: uploader, Log: log, Timeout: defaultUploadTimeout}
}

func (d *DirectConversionDispatcher) Dispatch(ctx context.Context, event entity.ConversionEvent) error {
	bg := context.WithoutCancel(ctx)
	go func() {
		uctx, cancel := context.WithTimeout(bg, d.Timeout)
		defer cancel()
		UploadAndLog(uctx, d.Uploader, d.Log, event)
	}()
	return nil
}

// UploadAndLog runs one upload and records the outcome. Shared by the direct
// dispatcher and the queue worker.
func UploadAndLog(ctx context.Context, uploader ConversionUploader, log logrus.FieldLogger, event entity.ConversionEvent) entity.ConversionResult {
	res := uploader.UploadConversion(ctx, event.ClickID, event.Value, event.Currency, event.OccurredAt)
	metrics.RecordConversionUpload(res.Success)

	fields := logrus.Fields{"origin": event.Origin, "value": event.Value, "currency": event.Currency}
	if res.Success {
		log.WithFields(fields).Info("✅ Ads conversion uploaded")
	} else {
		log.WithFields(fields).WithField("error", res.Error).WithField("details", res.Details).Warn("⚠️ Ads conversion not uploaded")
	}
	return res
}
