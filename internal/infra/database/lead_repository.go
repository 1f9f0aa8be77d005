package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

const leadColumns = `id, first_name, last_name, email, phone, source, utm_params, location,
	total_retirement_savings, percentage_to_protect, potential_deal_min, potential_deal_max,
	status, telegram_message_id, created_at, augusta_submitted_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l           entity.Lead
		utm         []byte
		savings     sql.NullString
		pct         sql.NullInt64
		dealMin     sql.NullInt64
		dealMax     sql.NullInt64
		submittedAt sql.NullTime
	)
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Source, &utm, &l.Location,
		&savings, &pct, &dealMin, &dealMax,
		&l.Status, &l.TelegramMessageID, &l.CreatedAt, &submittedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.UTMParams, err = scanJSONMap(utm); err != nil {
		return nil, err
	}
	if savings.Valid {
		l.Enrichment = &entity.Enrichment{
			TotalRetirementSavings: savings.String,
			PercentageToProtect:    int(nullInt64(pct)),
			PotentialDealMin:       nullInt64(dealMin),
			PotentialDealMax:       nullInt64(dealMax),
		}
	}
	if submittedAt.Valid {
		t := submittedAt.Time.UTC()
		l.AugustaSubmittedAt = &t
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	utm, err := jsonMap(lead.UTMParams)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO leads (id, first_name, last_name, email, phone, source, utm_params, location, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Source,
		utm,
		lead.Location,
		string(lead.Status),
		lead.CreatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrLeadAlreadyExists
	}
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return l, err
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus, extras entity.StatusExtras) error {
	query := `
		UPDATE leads
		SET status = $2, augusta_submitted_at = COALESCE($3, augusta_submitted_at)
		WHERE id = $1
	`
	var submittedAt interface{}
	if extras.AugustaSubmittedAt != nil {
		submittedAt = extras.AugustaSubmittedAt.UTC()
	}
	res, err := r.DB.ExecContext(ctx, query, id, string(status), submittedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *LeadRepository) Enrich(ctx context.Context, id string, e entity.Enrichment) (*entity.Lead, error) {
	query := `
		UPDATE leads
		SET total_retirement_savings = $2, percentage_to_protect = $3,
		    potential_deal_min = $4, potential_deal_max = $5
		WHERE id = $1
		RETURNING ` + leadColumns
	row := r.DB.QueryRowContext(ctx, query, id, e.TotalRetirementSavings, e.PercentageToProtect, e.PotentialDealMin, e.PotentialDealMax)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return l, err
}

func (r *LeadRepository) MarkSubmitted(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE leads
		SET status = $2, augusta_submitted_at = $3
		WHERE id = $1 AND status = $4
	`
	res, err := r.DB.ExecContext(ctx, query, id, string(entity.StatusSentToAugusta), at.UTC(), string(entity.StatusNew))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	if _, err := r.currentMessageID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *LeadRepository) SwapMessageID(ctx context.Context, id string, old, next int64) (int64, error) {
	query := `
		UPDATE leads SET telegram_message_id = $3
		WHERE id = $1 AND telegram_message_id = $2
		RETURNING telegram_message_id
	`
	var current int64
	err := r.DB.QueryRowContext(ctx, query, id, old, next).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return r.currentMessageID(ctx, id)
	}
	return current, err
}

func (r *LeadRepository) currentMessageID(ctx context.Context, id string) (int64, error) {
	var current int64
	err := r.DB.QueryRowContext(ctx, `SELECT telegram_message_id FROM leads WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, entity.ErrLeadNotFound
	}
	return current, err
}

func (r *LeadRepository) ListHighValue(ctx context.Context, minDealMax int64) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE potential_deal_max >= $1
		ORDER BY potential_deal_max DESC, created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, minDealMax)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) ListUnnotified(ctx context.Context, since time.Time) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE telegram_message_id = 0 AND created_at >= $1
		ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}
