package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrLeadAlreadyExists = errors.New("lead already exists")
)

type LeadStatus string

const (
	StatusNew           LeadStatus = "new"
	StatusSentToAugusta LeadStatus = "sent_to_augusta"
	StatusQualified     LeadStatus = "qualified"
	StatusConverted     LeadStatus = "converted"
)

// rank orders the lifecycle; an unknown status ranks below new.
func (s LeadStatus) rank() int {
	switch s {
	case StatusNew:
		return 0
	case StatusSentToAugusta:
		return 1
	case StatusQualified:
		return 2
	case StatusConverted:
		return 3
	default:
		return -1
	}
}

func (s LeadStatus) Valid() bool {
	return s.rank() >= 0
}

// AtLeast reports whether s is other or further along.
func (s LeadStatus) AtLeast(other LeadStatus) bool {
	return s.rank() >= other.rank()
}

// CanTransitionTo only allows strictly forward moves.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	return next.Valid() && next.rank() > s.rank()
}

// Enrichment arrives from a single form step, so both answers travel together.
type Enrichment struct {
	TotalRetirementSavings string `json:"totalRetirementSavings"`
	PercentageToProtect    int    `json:"percentageToProtect"`
	PotentialDealMin       int64  `json:"potentialDealMin"`
	PotentialDealMax       int64  `json:"potentialDealMax"`
}

type Lead struct {
	ID        string            `json:"id"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName,omitempty"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Source    string            `json:"source"`
	UTMParams map[string]string `json:"utmParams,omitempty"`
	Location  string            `json:"location,omitempty"`

	Enrichment *Enrichment `json:"enrichment,omitempty"`

	Status LeadStatus `json:"status"`

	// TelegramMessageID is the living-message handle, 0 until the first send.
	TelegramMessageID int64 `json:"telegramMessageId,omitempty"`

	CreatedAt          time.Time  `json:"createdAt"`
	AugustaSubmittedAt *time.Time `json:"augustaSubmittedAt,omitempty"`
}

func NewLead(firstName, lastName, email, phone, source string, utm map[string]string) *Lead {
	return &Lead{
		ID:        uuid.New().String(),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		Source:    strings.TrimSpace(source),
		UTMParams: utm,
		Status:    StatusNew,
		CreatedAt: time.Now().UTC(),
	}
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

func (l *Lead) IsEnriched() bool {
	return l.Enrichment != nil
}

func (l *Lead) HasMessage() bool {
	return l.TelegramMessageID != 0
}

// PotentialDealMax returns 0 for leads that were never enriched.
func (l *Lead) PotentialDealMax() int64 {
	if l.Enrichment == nil {
		return 0
	}
	return l.Enrichment.PotentialDealMax
}

// Clone returns a deep copy so callers can hand out snapshots.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	c := *l
	if l.UTMParams != nil {
		c.UTMParams = make(map[string]string, len(l.UTMParams))
		for k, v := range l.UTMParams {
			c.UTMParams[k] = v
		}
	}
	if l.Enrichment != nil {
		e := *l.Enrichment
		c.Enrichment = &e
	}
	if l.AugustaSubmittedAt != nil {
		t := *l.AugustaSubmittedAt
		c.AugustaSubmittedAt = &t
	}
	return &c
}

// StatusExtras are written in the same operation as the status change.
type StatusExtras struct {
	AugustaSubmittedAt *time.Time
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	UpdateStatus(ctx context.Context, id string, status LeadStatus, extras StatusExtras) error
	Enrich(ctx context.Context, id string, enrichment Enrichment) (*Lead, error)

	// MarkSubmitted moves new -> sent_to_augusta and reports whether this call applied it.
	MarkSubmitted(ctx context.Context, id string, at time.Time) (bool, error)

	// SwapMessageID stores next only while the current handle equals old, and
	// returns whatever handle is persisted afterwards.
	SwapMessageID(ctx context.Context, id string, old, next int64) (int64, error)

	ListHighValue(ctx context.Context, minDealMax int64) ([]*Lead, error)

	// ListUnnotified returns leads created at or after since that still have no message handle.
	ListUnnotified(ctx context.Context, since time.Time) ([]*Lead, error)
}
