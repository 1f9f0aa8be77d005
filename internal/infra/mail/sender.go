package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/usecase"
)

//go:embed templates/*.html
var templatesFS embed.FS

var partnerFailureTmpl = template.Must(template.ParseFS(templatesFS, "templates/partner_failure.html"))

var ErrNotConfigured = errors.New("mail not configured")

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) Enabled() bool {
	return s.Host != "" && s.To != ""
}

// SendPartnerFailureAlert tells the ops inbox that a lead could not be handed
// to Augusta.
func (s *EmailSender) SendPartnerFailureAlert(lead *entity.Lead) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}

	data := PartnerFailureAlertData{
		LeadID:    lead.ID,
		Name:      lead.FullName(),
		Email:     lead.Email,
		Phone:     lead.Phone,
		Source:    lead.Source,
		CreatedAt: lead.CreatedAt.UTC().Format("Jan 2, 2006 3:04 PM UTC"),
		AlertedAt: time.Now().UTC().Format(time.RFC1123),
	}
	if lead.Enrichment != nil {
		data.Savings = usecase.BracketLabel(lead.Enrichment.TotalRetirementSavings)
		data.DealRange = usecase.FormatCurrency(lead.Enrichment.PotentialDealMin) + " - " + usecase.FormatCurrency(lead.Enrichment.PotentialDealMax)
	}

	var body bytes.Buffer
	if err := partnerFailureTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render alert template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("⚠️ Augusta submission failed: %s", lead.FullName()))
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}
