package handlers

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var decimalOne = decimal.NewFromInt(1)

func parseLimit(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseOffset(value string) int {
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func parseID(value string) (uint, bool) {
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

func parseDate(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

// parseAmount parses decimal request fields (hours, rates, quantities),
// which travel as strings to avoid float JSON round-trips.
func parseAmount(value string) (decimal.Decimal, bool) {
	parsed, err := decimal.NewFromString(value)
	if err != nil || parsed.IsNegative() {
		return decimal.Zero, false
	}
	return parsed, true
}

func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(dateLayout)
	return &formatted
}

func formatTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(time.RFC3339Nano)
	return &formatted
}
