package usecase

import (
	"fmt"
	"math"
)

type SavingsBracket struct {
	Code  string
	Label string
	Min   int64
	Max   int64
}

var savingsBrackets = []SavingsBracket{
	{Code: "50k_100k", Label: "$50K - $100K", Min: 50_000, Max: 100_000},
	{Code: "100k_250k", Label: "$100K - $250K", Min: 100_000, Max: 250_000},
	{Code: "250k_500k", Label: "$250K - $500K", Min: 250_000, Max: 500_000},
	{Code: "500k_1m", Label: "$500K - $1M", Min: 500_000, Max: 1_000_000},
	{Code: "over_1m", Label: "Over $1M", Min: 1_000_000, Max: 2_000_000},
}

func LookupBracket(code string) (SavingsBracket, bool) {
	for _, b := range savingsBrackets {
		if b.Code == code {
			return b, true
		}
	}
	return SavingsBracket{}, false
}

// BracketLabel falls back to the raw code for brackets we do not know.
func BracketLabel(code string) string {
	if b, ok := LookupBracket(code); ok {
		return b.Label
	}
	return code
}

type DealEstimate struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// EstimateDeal scales the bracket bounds by the share the lead wants to protect.
// An unknown bracket yields a zero estimate.
func EstimateDeal(bracketCode string, protectPercent int) DealEstimate {
	b, ok := LookupBracket(bracketCode)
	if !ok {
		return DealEstimate{}
	}
	share := float64(protectPercent) / 100
	return DealEstimate{
		Min: int64(math.Round(float64(b.Min) * share)),
		Max: int64(math.Round(float64(b.Max) * share)),
	}
}

func FormatCurrency(amount int64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(amount)/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%dK", int64(math.Round(float64(amount)/1_000)))
	default:
		return fmt.Sprintf("$%d", amount)
	}
}

type HotTier int

const (
	TierNone HotTier = iota
	TierHot
	TierHighValue
	TierWhale
)

const (
	hotThreshold       int64 = 100_000
	HighValueThreshold int64 = 250_000
	whaleThreshold     int64 = 500_000
)

// HotLeadTier is display emphasis only; nothing branches on it except the banner.
func HotLeadTier(potentialMax int64) HotTier {
	switch {
	case potentialMax >= whaleThreshold:
		return TierWhale
	case potentialMax >= HighValueThreshold:
		return TierHighValue
	case potentialMax >= hotThreshold:
		return TierHot
	default:
		return TierNone
	}
}

func (t HotTier) Banner() string {
	switch t {
	case TierWhale:
		return "🐋 WHALE ALERT - potential deal over $500K"
	case TierHighValue:
		return "🔥🔥 HIGH-VALUE LEAD"
	case TierHot:
		return "🔥 HOT LEAD"
	default:
		return ""
	}
}
