package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/metrics"
)

const clickSideEffectTimeout = 15 * time.Second

type TrackClickInput struct {
	Destination string
	Source      string
	Company     string
	Placement   string
	ClickID     string
}

type ClickTrackingUseCase struct {
	Channel     NotificationChannel
	Conversions ConversionDispatcher
	ClickValue  float64
	Log         logrus.FieldLogger
}

func NewClickTrackingUseCase(channel NotificationChannel, conversions ConversionDispatcher, clickValue float64, log logrus.FieldLogger) *ClickTrackingUseCase {
	return &ClickTrackingUseCase{Channel: channel, Conversions: conversions, ClickValue: clickValue, Log: log}
}

// SafeDestination returns the destination when it is an absolute http(s) URL
// and "/" otherwise.
func SafeDestination(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "/"
	}
	return u.String()
}

// Track fires the click side effects in the background and returns at once.
func (uc *ClickTrackingUseCase) Track(ctx context.Context, input TrackClickInput) {
	bg := context.WithoutCancel(ctx)
	go func() {
		sctx, cancel := context.WithTimeout(bg, clickSideEffectTimeout)
		defer cancel()
		uc.notify(sctx, input)
		uc.dispatch(sctx, input)
	}()
}

func (uc *ClickTrackingUseCase) notify(ctx context.Context, input TrackClickInput) {
	if uc.Channel == nil {
		return
	}
	if _, err := uc.Channel.Send(ctx, ComposeClickNotice(input), false); err != nil {
		metrics.RecordNotification("click", false)
		uc.Log.WithError(err).Warn("⚠️ Click notice not delivered")
		return
	}
	metrics.RecordNotification("click", true)
}

func (uc *ClickTrackingUseCase) dispatch(ctx context.Context, input TrackClickInput) {
	if uc.Conversions == nil || !entity.IsValidClickID(input.ClickID) {
		return
	}
	err := uc.Conversions.Dispatch(ctx, entity.ConversionEvent{
		ClickID:    strings.TrimSpace(input.ClickID),
		Value:      uc.ClickValue,
		Currency:   "USD",
		OccurredAt: time.Now().UTC(),
		Origin:     "click",
	})
	if err != nil {
		uc.Log.WithError(err).Warn("⚠️ Conversion dispatch failed")
	}
}

func ComposeClickNotice(input TrackClickInput) string {
	company := input.Company
	if company == "" {
		company = "unknown company"
	}
	emoji, label := DescribeSource(input.Source)
	var b strings.Builder
	fmt.Fprintf(&b, "🖱️ Affiliate click: %s\n", company)
	fmt.Fprintf(&b, "%s Source: %s\n", emoji, label)
	if input.Placement != "" {
		fmt.Fprintf(&b, "📌 Placement: %s\n", input.Placement)
	}
	fmt.Fprintf(&b, "🔗 %s", SafeDestination(input.Destination))
	return b.String()
}
