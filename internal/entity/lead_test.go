package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadStatusTransitions(t *testing.T) {
	assert.True(t, StatusNew.CanTransitionTo(StatusSentToAugusta))
	assert.True(t, StatusNew.CanTransitionTo(StatusQualified))
	assert.True(t, StatusSentToAugusta.CanTransitionTo(StatusConverted))
	assert.False(t, StatusQualified.CanTransitionTo(StatusSentToAugusta))
	assert.False(t, StatusConverted.CanTransitionTo(StatusConverted))
	assert.False(t, StatusNew.CanTransitionTo(LeadStatus("archived")))

	assert.True(t, StatusQualified.AtLeast(StatusSentToAugusta))
	assert.False(t, StatusNew.AtLeast(StatusSentToAugusta))
}

func TestNewLeadDefaults(t *testing.T) {
	lead := NewLead(" Jane ", "Doe", "jane@example.com", "6502530000", "youtube", nil)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "Jane", lead.FirstName)
	assert.Equal(t, "Jane Doe", lead.FullName())
	assert.Equal(t, StatusNew, lead.Status)
	assert.False(t, lead.HasMessage())
	assert.False(t, lead.IsEnriched())
	assert.Zero(t, lead.PotentialDealMax())
	assert.False(t, lead.CreatedAt.IsZero())
}

func TestLeadCloneIsDeep(t *testing.T) {
	lead := NewLead("Jane", "Doe", "jane@example.com", "6502530000", "google", map[string]string{"utm_source": "google"})
	lead.Enrichment = &Enrichment{TotalRetirementSavings: "100k_250k", PercentageToProtect: 50, PotentialDealMax: 125000}

	c := lead.Clone()
	c.UTMParams["utm_source"] = "bing"
	c.Enrichment.PotentialDealMax = 1

	assert.Equal(t, "google", lead.UTMParams["utm_source"])
	assert.Equal(t, int64(125000), lead.PotentialDealMax())
}

func TestIsValidClickID(t *testing.T) {
	assert.False(t, IsValidClickID(""))
	assert.False(t, IsValidClickID("unknown"))
	assert.False(t, IsValidClickID("abc"))
	assert.False(t, IsValidClickID("  undefined  "))
	assert.True(t, IsValidClickID("Cj0KCQjw-example-gclid"))
}
