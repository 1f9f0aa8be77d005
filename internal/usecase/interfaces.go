package usecase

import (
	"context"
	"time"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

// NotificationChannel is the living-message channel (Telegram in production).
type NotificationChannel interface {
	Send(ctx context.Context, text string, urgent bool) (int64, error)
	Edit(ctx context.Context, messageID int64, text string) error
}

// PartnerSubmitter reports acceptance as a bool; failures are logged inside.
type PartnerSubmitter interface {
	Submit(ctx context.Context, lead *entity.Lead) bool
}

type ConversionUploader interface {
	UploadConversion(ctx context.Context, clickID string, value float64, currency string, when time.Time) entity.ConversionResult
}

// ConversionDispatcher hands a conversion off without waiting for the upload.
type ConversionDispatcher interface {
	Dispatch(ctx context.Context, event entity.ConversionEvent) error
}

// Locker serializes work per key, across instances when backed by Redis.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type OpsAlerter interface {
	SendPartnerFailureAlert(lead *entity.Lead) error
}
