package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/metrics"
)

// Aliases partners use for the fields we model. The first present alias wins.
var (
	typeKeys     = []string{"type", "event", "action"}
	subIDKeys    = []string{"sub_id", "subid", "sub1", "aff_sub"}
	leadIDKeys   = []string{"lead_id", "leadid"}
	clickIDKeys  = []string{"gclid", "click_id"}
	payoutKeys   = []string{"payout", "amount", "value"}
	currencyKeys = []string{"currency"}
	emailKeys    = []string{"email"}
)

// ClassifyPostback maps a free-text event name onto the three tracked types.
func ClassifyPostback(raw string) entity.PostbackEventType {
	t := strings.ToLower(raw)
	switch {
	case strings.Contains(t, "trade"), strings.Contains(t, "complete"), strings.Contains(t, "sale"):
		return entity.EventTradeComplete
	case strings.Contains(t, "qualified"), strings.Contains(t, "qualify"):
		return entity.EventQualifiedLead
	default:
		return entity.EventLeadCapture
	}
}

// BuildPostbackEvent splits merged params into known fields and Extra.
func BuildPostbackEvent(params map[string]string) *entity.PostbackEvent {
	used := map[string]bool{}
	pick := func(keys []string) string {
		for _, k := range keys {
			if v, ok := params[k]; ok {
				used[k] = true
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
		return ""
	}

	rawType := pick(typeKeys)
	e := entity.NewPostbackEvent(ClassifyPostback(rawType))
	e.RawType = rawType
	e.SubID = pick(subIDKeys)
	e.PartnerLeadID = pick(leadIDKeys)
	e.ClickID = pick(clickIDKeys)
	e.Email = pick(emailKeys)
	e.Currency = strings.ToUpper(pick(currencyKeys))
	if p, err := strconv.ParseFloat(pick(payoutKeys), 64); err == nil {
		e.Payout = p
	}

	for k, v := range params {
		if !used[k] {
			e.Extra[k] = v
		}
	}
	return e
}

type PostbackUseCase struct {
	Repo        entity.PostbackRepositoryInterface
	Lifecycle   *LeadLifecycle
	Conversions ConversionDispatcher
	Log         logrus.FieldLogger
}

func NewPostbackUseCase(repo entity.PostbackRepositoryInterface, lifecycle *LeadLifecycle, conversions ConversionDispatcher, log logrus.FieldLogger) *PostbackUseCase {
	return &PostbackUseCase{Repo: repo, Lifecycle: lifecycle, Conversions: conversions, Log: log}
}

// Execute records the event and applies its side effects. The returned
// output always carries the classified type, even when err is non-nil, so the
// handler can answer the partner with a success shape either way.
func (uc *PostbackUseCase) Execute(ctx context.Context, input PostbackInput) (PostbackOutput, error) {
	event := BuildPostbackEvent(input.Params)
	out := PostbackOutput{EventID: event.ID, EventType: string(event.EventType)}
	metrics.RecordPostback(out.EventType)

	log := uc.Log.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.EventType,
		"sub_id":     event.SubID,
		"lead_id":    event.PartnerLeadID,
	})
	log.Info("📥 Partner postback received")

	if err := uc.Repo.Append(ctx, event); err != nil {
		return out, storageError("append postback", err)
	}

	uc.applyToLead(ctx, event, log)
	uc.dispatchConversion(ctx, event, log)
	return out, nil
}

// applyToLead advances a local lead when sub_id names one we sent.
func (uc *PostbackUseCase) applyToLead(ctx context.Context, event *entity.PostbackEvent, log logrus.FieldLogger) {
	if uc.Lifecycle == nil || event.SubID == "" || !isUUID(event.SubID) {
		return
	}

	var target entity.LeadStatus
	switch event.EventType {
	case entity.EventQualifiedLead:
		target = entity.StatusQualified
	case entity.EventTradeComplete:
		target = entity.StatusConverted
	default:
		return
	}

	if _, err := uc.Lifecycle.UpdateStatus(ctx, event.SubID, target); err != nil {
		log.WithError(err).Warn("⚠️ Postback did not update lead status")
	}
}

func (uc *PostbackUseCase) dispatchConversion(ctx context.Context, event *entity.PostbackEvent, log logrus.FieldLogger) {
	if uc.Conversions == nil || event.EventType != entity.EventTradeComplete || !entity.IsValidClickID(event.ClickID) {
		return
	}
	currency := event.Currency
	if currency == "" {
		currency = "USD"
	}
	err := uc.Conversions.Dispatch(ctx, entity.ConversionEvent{
		ClickID:    event.ClickID,
		Value:      event.Payout,
		Currency:   currency,
		OccurredAt: event.ReceivedAt,
		Origin:     "postback",
	})
	if err != nil {
		log.WithError(err).Warn("⚠️ Conversion dispatch failed")
	}
}

func (uc *PostbackUseCase) List(ctx context.Context) ([]*entity.PostbackEvent, error) {
	list, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, storageError("list postbacks", err)
	}
	return list, nil
}
