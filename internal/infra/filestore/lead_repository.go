package filestore

import (
	"context"
	"sort"
	"time"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

type LeadRepository struct {
	col *collection[*entity.Lead]
}

func NewLeadRepository(dir string) (*LeadRepository, error) {
	col, err := newCollection[*entity.Lead](dir, "leads")
	if err != nil {
		return nil, err
	}
	return &LeadRepository{col: col}, nil
}

func findLead(items []*entity.Lead, id string) *entity.Lead {
	for _, l := range items {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return r.col.update(func(items []*entity.Lead) ([]*entity.Lead, bool, error) {
		if findLead(items, lead.ID) != nil {
			return nil, false, entity.ErrLeadAlreadyExists
		}
		return append(items, lead.Clone()), true, nil
	})
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	items, err := r.col.read()
	if err != nil {
		return nil, err
	}
	l := findLead(items, id)
	if l == nil {
		return nil, entity.ErrLeadNotFound
	}
	return l, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus, extras entity.StatusExtras) error {
	return r.col.update(func(items []*entity.Lead) ([]*entity.Lead, bool, error) {
		l := findLead(items, id)
		if l == nil {
			return nil, false, entity.ErrLeadNotFound
		}
		l.Status = status
		if extras.AugustaSubmittedAt != nil {
			at := extras.AugustaSubmittedAt.UTC()
			l.AugustaSubmittedAt = &at
		}
		return items, true, nil
	})
}

func (r *LeadRepository) Enrich(ctx context.Context, id string, enrichment entity.Enrichment) (*entity.Lead, error) {
	var out *entity.Lead
	err := r.col.update(func(items []*entity.Lead) ([]*entity.Lead, bool, error) {
		l := findLead(items, id)
		if l == nil {
			return nil, false, entity.ErrLeadNotFound
		}
		e := enrichment
		l.Enrichment = &e
		out = l.Clone()
		return items, true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LeadRepository) MarkSubmitted(ctx context.Context, id string, at time.Time) (bool, error) {
	applied := false
	err := r.col.update(func(items []*entity.Lead) ([]*entity.Lead, bool, error) {
		l := findLead(items, id)
		if l == nil {
			return nil, false, entity.ErrLeadNotFound
		}
		if l.Status != entity.StatusNew {
			return items, false, nil
		}
		ts := at.UTC()
		l.Status = entity.StatusSentToAugusta
		l.AugustaSubmittedAt = &ts
		applied = true
		return items, true, nil
	})
	return applied, err
}

func (r *LeadRepository) SwapMessageID(ctx context.Context, id string, old, next int64) (int64, error) {
	var current int64
	err := r.col.update(func(items []*entity.Lead) ([]*entity.Lead, bool, error) {
		l := findLead(items, id)
		if l == nil {
			return nil, false, entity.ErrLeadNotFound
		}
		if l.TelegramMessageID != old {
			current = l.TelegramMessageID
			return items, false, nil
		}
		l.TelegramMessageID = next
		current = next
		return items, true, nil
	})
	return current, err
}

func (r *LeadRepository) ListUnnotified(ctx context.Context, since time.Time) ([]*entity.Lead, error) {
	items, err := r.col.read()
	if err != nil {
		return nil, err
	}
	var out []*entity.Lead
	for _, l := range items {
		if !l.HasMessage() && !l.CreatedAt.Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

// ListHighValue returns enriched leads at or above the threshold, biggest first.
func (r *LeadRepository) ListHighValue(ctx context.Context, minDealMax int64) ([]*entity.Lead, error) {
	items, err := r.col.read()
	if err != nil {
		return nil, err
	}
	var out []*entity.Lead
	for _, l := range items {
		if l.PotentialDealMax() >= minDealMax {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PotentialDealMax() > out[j].PotentialDealMax()
	})
	return out, nil
}
