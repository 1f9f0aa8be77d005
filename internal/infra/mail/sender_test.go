package mail

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendPartnerFailureAlert(t *testing.T) {
	d := &fakeDialer{}
	s := NewEmailSender("smtp.example.com", 587, "u", "p", "alerts@example.com", "ops@example.com")
	s.dialer = d

	lead := entity.NewLead("Jane", "Doe", "jane@example.com", "+16502530000", "youtube", nil)
	lead.Enrichment = &entity.Enrichment{TotalRetirementSavings: "250k_500k", PercentageToProtect: 50, PotentialDealMin: 125000, PotentialDealMax: 250000}

	require.NoError(t, s.SendPartnerFailureAlert(lead))
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"ops@example.com"}, msg.GetHeader("To"))
	assert.Contains(t, msg.GetHeader("Subject")[0], "Jane Doe")
}

func TestPartnerFailureTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, partnerFailureTmpl.Execute(&buf, PartnerFailureAlertData{
		LeadID:    "lead-123",
		Name:      "Jane Doe",
		DealRange: "$125K - $250K",
	}))
	assert.Contains(t, buf.String(), "lead-123")
	assert.Contains(t, buf.String(), "$125K - $250K")
	assert.NotContains(t, buf.String(), "Savings")
}

func TestSendPartnerFailureAlert_DialError(t *testing.T) {
	s := NewEmailSender("smtp.example.com", 587, "", "", "a@example.com", "ops@example.com")
	s.dialer = &fakeDialer{err: errors.New("connection refused")}

	err := s.SendPartnerFailureAlert(entity.NewLead("A", "B", "a@b.com", "+1", "", nil))
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendPartnerFailureAlert_NotConfigured(t *testing.T) {
	s := NewEmailSender("", 0, "", "", "", "")
	assert.ErrorIs(t, s.SendPartnerFailureAlert(entity.NewLead("A", "B", "a@b.com", "+1", "", nil)), ErrNotConfigured)
}
