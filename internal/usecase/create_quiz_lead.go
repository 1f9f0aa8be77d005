package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/metrics"
)

// highValueBudgets trigger an immediate channel alert when a quiz is completed.
var highValueBudgets = map[string]bool{
	"250k_500k": true,
	"500k_plus": true,
}

type QuizLeadUseCase struct {
	Repo    entity.QuizLeadRepositoryInterface
	Channel NotificationChannel
	Log     logrus.FieldLogger
}

func NewQuizLeadUseCase(repo entity.QuizLeadRepositoryInterface, channel NotificationChannel, log logrus.FieldLogger) *QuizLeadUseCase {
	return &QuizLeadUseCase{Repo: repo, Channel: channel, Log: log}
}

func (uc *QuizLeadUseCase) Create(ctx context.Context, input CreateQuizLeadInput) (*CreateQuizLeadOutput, error) {
	answers, verr := validateQuizInput(input)
	if verr != nil {
		return nil, verr
	}

	q := entity.NewQuizLead(
		strings.TrimSpace(input.ProductType),
		strings.TrimSpace(input.Budget),
		strings.TrimSpace(input.RecommendedCompany),
		strings.TrimSpace(input.Email),
		answers,
		input.UTMParams,
	)

	if err := uc.Repo.Create(ctx, q); err != nil {
		return nil, storageError("create quiz lead", err)
	}
	metrics.RecordLeadCreated("quiz")

	uc.Log.WithFields(logrus.Fields{"quiz_lead_id": q.ID, "budget": q.Budget}).Info("✅ Quiz lead captured")

	if highValueBudgets[q.Budget] {
		uc.notifyHighValue(ctx, q)
	}

	return &CreateQuizLeadOutput{ID: q.ID}, nil
}

func (uc *QuizLeadUseCase) Get(ctx context.Context, id string) (*entity.QuizLead, error) {
	if !isUUID(id) {
		return nil, &DomainError{Code: CodeInvalidID, Message: "invalid quiz lead id", Fields: []string{"id"}}
	}
	q, err := uc.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrQuizLeadNotFound) {
		return nil, notFound(CodeQuizLeadNotFound, "quiz lead not found")
	}
	if err != nil {
		return nil, storageError("find quiz lead", err)
	}
	return q, nil
}

func (uc *QuizLeadUseCase) List(ctx context.Context) ([]*entity.QuizLead, error) {
	list, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, storageError("list quiz leads", err)
	}
	return list, nil
}

func (uc *QuizLeadUseCase) notifyHighValue(ctx context.Context, q *entity.QuizLead) {
	if uc.Channel == nil {
		return
	}
	if _, err := uc.Channel.Send(ctx, composeQuizAlert(q), true); err != nil {
		metrics.RecordNotification("quiz_alert", false)
		uc.Log.WithError(err).WithField("quiz_lead_id", q.ID).Warn("⚠️ Quiz alert not delivered")
		return
	}
	metrics.RecordNotification("quiz_alert", true)
}

func composeQuizAlert(q *entity.QuizLead) string {
	var b strings.Builder
	b.WriteString("🧩 HIGH-VALUE QUIZ LEAD\n")
	b.WriteString(notificationDivider + "\n")
	fmt.Fprintf(&b, "💰 Budget: %s\n", q.Budget)
	fmt.Fprintf(&b, "📦 Product: %s\n", q.ProductType)
	fmt.Fprintf(&b, "🏆 Recommended: %s\n", q.RecommendedCompany)
	if q.Email != "" {
		fmt.Fprintf(&b, "📧 %s\n", q.Email)
	}
	if src := q.UTMParams["utm_source"]; src != "" {
		emoji, label := DescribeSource(src)
		fmt.Fprintf(&b, "%s Source: %s\n", emoji, label)
	}
	fmt.Fprintf(&b, "🕐 %s", q.CreatedAt.UTC().Format("Jan 2, 2006 3:04 PM UTC"))
	return b.String()
}

// validateQuizInput reports every missing field at once, then checks that
// answers is a JSON object. Non-string answer values keep their JSON text.
func validateQuizInput(input CreateQuizLeadInput) (map[string]string, *DomainError) {
	var missing []string
	if strings.TrimSpace(input.ProductType) == "" {
		missing = append(missing, "productType")
	}
	if strings.TrimSpace(input.Budget) == "" {
		missing = append(missing, "budget")
	}
	raw := bytes.TrimSpace(input.Answers)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		missing = append(missing, "answers")
	}
	if strings.TrimSpace(input.RecommendedCompany) == "" {
		missing = append(missing, "recommendedCompany")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, newValidationError(missing, nil)
	}

	if raw[0] != '{' {
		return nil, &DomainError{Code: CodeValidation, Message: "answers must be an object", Fields: []string{"answers"}}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: "answers must be an object", Fields: []string{"answers"}}
	}

	answers := make(map[string]string, len(fields))
	for k, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			answers[k] = s
			continue
		}
		answers[k] = string(v)
	}
	return answers, nil
}
