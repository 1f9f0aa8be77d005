package database

import (
	"context"
	"database/sql"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

const postbackColumns = `id, event_type, raw_type, sub_id, partner_lead_id, click_id, email, payout, currency, extra, received_at`

type PostbackRepository struct {
	DB *sql.DB
}

func NewPostbackRepository(db *sql.DB) *PostbackRepository {
	return &PostbackRepository{DB: db}
}

func (r *PostbackRepository) Append(ctx context.Context, e *entity.PostbackEvent) error {
	extra, err := jsonMap(e.Extra)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO partner_postbacks (` + postbackColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.DB.ExecContext(ctx, query,
		e.ID, string(e.EventType), e.RawType, e.SubID, e.PartnerLeadID, e.ClickID,
		e.Email, e.Payout, e.Currency, extra, e.ReceivedAt,
	)
	return err
}

func (r *PostbackRepository) List(ctx context.Context) ([]*entity.PostbackEvent, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+postbackColumns+` FROM partner_postbacks ORDER BY received_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.PostbackEvent
	for rows.Next() {
		var (
			e     entity.PostbackEvent
			extra []byte
		)
		if err := rows.Scan(&e.ID, &e.EventType, &e.RawType, &e.SubID, &e.PartnerLeadID, &e.ClickID,
			&e.Email, &e.Payout, &e.Currency, &extra, &e.ReceivedAt); err != nil {
			return nil, err
		}
		if e.Extra, err = scanJSONMap(extra); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
