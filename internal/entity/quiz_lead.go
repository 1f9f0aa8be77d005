package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrQuizLeadNotFound = errors.New("quiz lead not found")

// QuizLead is written once by the quiz funnel and never mutated.
type QuizLead struct {
	ID                 string            `json:"id"`
	ProductType        string            `json:"productType"`
	Budget             string            `json:"budget"`
	Answers            map[string]string `json:"answers"`
	RecommendedCompany string            `json:"recommendedCompany"`
	Email              string            `json:"email,omitempty"`
	UTMParams          map[string]string `json:"utmParams,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
}

func NewQuizLead(productType, budget, recommendedCompany, email string, answers, utm map[string]string) *QuizLead {
	return &QuizLead{
		ID:                 uuid.New().String(),
		ProductType:        productType,
		Budget:             budget,
		Answers:            answers,
		RecommendedCompany: recommendedCompany,
		Email:              email,
		UTMParams:          utm,
		CreatedAt:          time.Now().UTC(),
	}
}

type QuizLeadRepositoryInterface interface {
	Create(ctx context.Context, q *QuizLead) error
	FindByID(ctx context.Context, id string) (*QuizLead, error)
	List(ctx context.Context) ([]*QuizLead, error)
}
