package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PostbackEventType string

const (
	EventLeadCapture   PostbackEventType = "lead_capture"
	EventQualifiedLead PostbackEventType = "qualified_lead"
	EventTradeComplete PostbackEventType = "trade_complete"
)

// PostbackEvent is an append-only record of a partner callback. Fields the
// partner sends that we do not model end up in Extra.
type PostbackEvent struct {
	ID            string            `json:"id"`
	EventType     PostbackEventType `json:"eventType"`
	RawType       string            `json:"rawType,omitempty"`
	SubID         string            `json:"subId,omitempty"`
	PartnerLeadID string            `json:"partnerLeadId,omitempty"`
	ClickID       string            `json:"clickId,omitempty"`
	Email         string            `json:"email,omitempty"`
	Payout        float64           `json:"payout,omitempty"`
	Currency      string            `json:"currency,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
	ReceivedAt    time.Time         `json:"receivedAt"`
}

func NewPostbackEvent(eventType PostbackEventType) *PostbackEvent {
	return &PostbackEvent{
		ID:         uuid.New().String(),
		EventType:  eventType,
		Extra:      map[string]string{},
		ReceivedAt: time.Now().UTC(),
	}
}

type PostbackRepositoryInterface interface {
	Append(ctx context.Context, e *PostbackEvent) error
	List(ctx context.Context) ([]*PostbackEvent, error)
}
