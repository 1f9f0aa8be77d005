package filestore

import (
	"context"
	"sort"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

type QuizLeadRepository struct {
	col *collection[*entity.QuizLead]
}

func NewQuizLeadRepository(dir string) (*QuizLeadRepository, error) {
	col, err := newCollection[*entity.QuizLead](dir, "quiz_leads")
	if err != nil {
		return nil, err
	}
	return &QuizLeadRepository{col: col}, nil
}

func (r *QuizLeadRepository) Create(ctx context.Context, q *entity.QuizLead) error {
	return r.col.update(func(items []*entity.QuizLead) ([]*entity.QuizLead, bool, error) {
		return append(items, q), true, nil
	})
}

func (r *QuizLeadRepository) FindByID(ctx context.Context, id string) (*entity.QuizLead, error) {
	items, err := r.col.read()
	if err != nil {
		return nil, err
	}
	for _, q := range items {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, entity.ErrQuizLeadNotFound
}

// List returns newest first.
func (r *QuizLeadRepository) List(ctx context.Context) ([]*entity.QuizLead, error) {
	items, err := r.col.read()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
