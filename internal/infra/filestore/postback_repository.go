package filestore

import (
	"context"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

type PostbackRepository struct {
	col *collection[*entity.PostbackEvent]
}

func NewPostbackRepository(dir string) (*PostbackRepository, error) {
	col, err := newCollection[*entity.PostbackEvent](dir, "postbacks")
	if err != nil {
		return nil, err
	}
	return &PostbackRepository{col: col}, nil
}

func (r *PostbackRepository) Append(ctx context.Context, e *entity.PostbackEvent) error {
	return r.col.update(func(items []*entity.PostbackEvent) ([]*entity.PostbackEvent, bool, error) {
		return append(items, e), true, nil
	})
}

// List returns events in arrival order.
func (r *PostbackRepository) List(ctx context.Context) ([]*entity.PostbackEvent, error) {
	return r.col.read()
}
