package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

const quizLeadColumns = `id, product_type, budget, answers, recommended_company, email, utm_params, created_at`

type QuizLeadRepository struct {
	DB *sql.DB
}

func NewQuizLeadRepository(db *sql.DB) *QuizLeadRepository {
	return &QuizLeadRepository{DB: db}
}

func (r *QuizLeadRepository) Create(ctx context.Context, q *entity.QuizLead) error {
	answers, err := json.Marshal(q.Answers)
	if err != nil {
		return err
	}
	utm, err := jsonMap(q.UTMParams)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO quiz_leads (` + quizLeadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.DB.ExecContext(ctx, query, q.ID, q.ProductType, q.Budget, answers, q.RecommendedCompany, q.Email, utm, q.CreatedAt)
	return err
}

func scanQuizLead(row rowScanner) (*entity.QuizLead, error) {
	var (
		q       entity.QuizLead
		answers []byte
		utm     []byte
	)
	if err := row.Scan(&q.ID, &q.ProductType, &q.Budget, &answers, &q.RecommendedCompany, &q.Email, &utm, &q.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if q.Answers, err = scanJSONMap(answers); err != nil {
		return nil, err
	}
	if q.UTMParams, err = scanJSONMap(utm); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizLeadRepository) FindByID(ctx context.Context, id string) (*entity.QuizLead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+quizLeadColumns+` FROM quiz_leads WHERE id = $1`, id)
	q, err := scanQuizLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrQuizLeadNotFound
	}
	return q, err
}

func (r *QuizLeadRepository) List(ctx context.Context) ([]*entity.QuizLead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+quizLeadColumns+` FROM quiz_leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.QuizLead
	for rows.Next() {
		q, err := scanQuizLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
