package usecase

import (
	"encoding/json"
	"strings"
)

type CreateLeadInput struct {
	FirstName string            `json:"firstName" validate:"required,max=100"`
	LastName  string            `json:"lastName" validate:"required,max=100"`
	Email     string            `json:"email" validate:"required,email"`
	Phone     string            `json:"phone" validate:"required,phone"`
	Source    string            `json:"source"`
	UTMParams map[string]string `json:"utmParams,omitempty"`
}

func (in CreateLeadInput) trimmed() CreateLeadInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Source = strings.TrimSpace(in.Source)
	return in
}

type EnrichLeadInput struct {
	TotalRetirementSavings string `json:"totalRetirementSavings" validate:"required"`
	PercentageToProtect    int    `json:"percentageToProtect" validate:"required,min=1,max=100"`
}

type SubmitResult struct {
	Submitted        bool `json:"augustaSubmitted"`
	AlreadySubmitted bool `json:"alreadySubmitted"`
}

// CreateQuizLeadInput keeps answers raw so the shape can be checked before decoding.
type CreateQuizLeadInput struct {
	ProductType        string            `json:"productType"`
	Budget             string            `json:"budget"`
	Answers            json.RawMessage   `json:"answers"`
	RecommendedCompany string            `json:"recommendedCompany"`
	Email              string            `json:"email,omitempty"`
	UTMParams          map[string]string `json:"utmParams,omitempty"`
}

type CreateQuizLeadOutput struct {
	ID string `json:"id"`
}

// PostbackInput is the merged view of query parameters and body fields.
type PostbackInput struct {
	Params map[string]string
}

type PostbackOutput struct {
	EventID   string `json:"eventId,omitempty"`
	EventType string `json:"eventType"`
}
