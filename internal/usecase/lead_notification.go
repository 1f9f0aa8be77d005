package usecase

import (
	"fmt"
	"strings"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/phone"
)

const notificationDivider = "━━━━━━━━━━━━━━━━━━"

type trafficSource struct {
	keywords []string
	emoji    string
	label    string
}

// Order matters: the first matching entry wins.
var trafficSources = []trafficSource{
	{keywords: []string{"youtube"}, emoji: "🎬", label: "YouTube"},
	{keywords: []string{"google", "organic"}, emoji: "🔍", label: "Google"},
	{keywords: []string{"facebook"}, emoji: "📘", label: "Facebook"},
	{keywords: []string{"instagram"}, emoji: "📸", label: "Instagram"},
	{keywords: []string{"tiktok"}, emoji: "🎵", label: "TikTok"},
	{keywords: []string{"twitter", "x.com"}, emoji: "🐦", label: "X / Twitter"},
	{keywords: []string{"email", "newsletter"}, emoji: "📧", label: "Email"},
	{keywords: []string{"quiz"}, emoji: "🧩", label: "Quiz"},
	{keywords: []string{"landing"}, emoji: "🛬", label: "Landing Page"},
}

// DescribeSource maps a free-text source to an emoji and a display label.
func DescribeSource(source string) (string, string) {
	s := strings.ToLower(strings.TrimSpace(source))
	if s == "x" {
		return "🐦", "X / Twitter"
	}
	for _, ts := range trafficSources {
		for _, kw := range ts.keywords {
			if strings.Contains(s, kw) {
				return ts.emoji, ts.label
			}
		}
	}
	if s == "" || s == "direct" {
		return "🌐", "Direct"
	}
	return "🌐", strings.TrimSpace(source)
}

// ComposeLeadNotification renders the living message for a lead. It is a pure
// function of the snapshot so re-edits with unchanged state are identical.
func ComposeLeadNotification(lead *entity.Lead, location string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "👤 NEW LEAD: %s\n", lead.FullName())
	b.WriteString(notificationDivider + "\n")

	fmt.Fprintf(&b, "📞 %s\n", phone.NormalizeE164(lead.Phone))
	fmt.Fprintf(&b, "📧 %s\n", lead.Email)
	emoji, label := DescribeSource(lead.Source)
	fmt.Fprintf(&b, "%s Source: %s\n", emoji, label)

	if location == "" {
		location = lead.Location
	}
	if location != "" {
		fmt.Fprintf(&b, "📍 %s\n", location)
	}

	fmt.Fprintf(&b, "🕐 %s\n", lead.CreatedAt.UTC().Format("Jan 2, 2006 3:04 PM UTC"))

	if e := lead.Enrichment; e != nil {
		b.WriteString(notificationDivider + "\n")
		fmt.Fprintf(&b, "💰 Savings: %s\n", BracketLabel(e.TotalRetirementSavings))
		fmt.Fprintf(&b, "🛡️ Protect: %d%%\n", e.PercentageToProtect)
		fmt.Fprintf(&b, "💵 Potential deal: %s - %s\n", FormatCurrency(e.PotentialDealMin), FormatCurrency(e.PotentialDealMax))
		if banner := HotLeadTier(e.PotentialDealMax).Banner(); banner != "" {
			b.WriteString(banner + "\n")
		}
	}

	b.WriteString(notificationDivider + "\n")
	b.WriteString(statusLine(lead))

	return b.String()
}

func statusLine(lead *entity.Lead) string {
	switch lead.Status {
	case entity.StatusConverted:
		return "✅ CONVERTED - trade complete"
	case entity.StatusQualified:
		return "⭐ QUALIFIED by Augusta"
	case entity.StatusSentToAugusta:
		if !lead.IsEnriched() {
			return "📤 Sent to Augusta (still waiting for enrichment)"
		}
		return "📤 Sent to Augusta"
	default:
		return "⏳ Status: waiting for enrichment"
	}
}

// IsUrgent decides whether the channel should ping people for this lead.
func IsUrgent(lead *entity.Lead) bool {
	if lead.Status == entity.StatusQualified || lead.Status == entity.StatusConverted {
		return true
	}
	return lead.PotentialDealMax() >= HighValueThreshold
}
