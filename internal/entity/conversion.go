package entity

import (
	"strings"
	"time"
)

const minClickIDLength = 10

// ConversionEvent is an offline conversion keyed by an ad-platform click id.
type ConversionEvent struct {
	ClickID    string    `json:"click_id"`
	Value      float64   `json:"value"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
	Origin     string    `json:"origin"`
}

// IsValidClickID rejects empty, short and placeholder ids ("unknown", "undefined").
func IsValidClickID(clickID string) bool {
	id := strings.TrimSpace(clickID)
	if len(id) < minClickIDLength {
		return false
	}
	switch strings.ToLower(id) {
	case "unknown", "undefined", "null", "(not set)":
		return false
	}
	return true
}

// ConversionResult is always returned, never an error, so fire-and-forget
// callers can log it and move on.
type ConversionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}
