package money

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/clientdesk/clientdesk/pkg/config"
)

func testCalculator() *Calculator {
	return NewCalculator(
		config.TaxConfig{DefaultRate: 19.0, ReducedRate: 7.0},
		config.LocaleConfig{Locale: "en", Currency: "EUR", CurrencySymbol: "€"},
	)
}

func TestTax(t *testing.T) {
	calc := testCalculator()

	tests := []struct {
		net  string
		want string
	}{
		{"100.00", "19.00"},
		{"99.99", "19.00"},  // 18.9981 rounds half-up
		{"0.01", "0.00"},    // 0.0019 rounds down
		{"10.50", "2.00"},   // 1.995 rounds half-up
		{"0", "0.00"},
	}

	for _, tt := range tests {
		net := decimal.RequireFromString(tt.net)
		if got := calc.Tax(net); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("Tax(%s): expected %s, got %s", tt.net, tt.want, got)
		}
	}
}

func TestTaxAtReducedRate(t *testing.T) {
	calc := testCalculator()

	net := decimal.RequireFromString("100.00")
	if got := calc.TaxAt(net, calc.ReducedRate()); !got.Equal(decimal.RequireFromString("7.00")) {
		t.Fatalf("expected 7.00, got %s", got)
	}
}

func TestGross(t *testing.T) {
	calc := testCalculator()

	net := decimal.RequireFromString("100.00")
	if got := calc.Gross(net); !got.Equal(decimal.RequireFromString("119.00")) {
		t.Fatalf("expected 119.00, got %s", got)
	}
}

func TestFormatAmount(t *testing.T) {
	calc := testCalculator()

	amount := decimal.RequireFromString("1234.5")
	if got := calc.FormatAmount(amount); got != "€1,234.50" {
		t.Fatalf("expected €1,234.50, got %q", got)
	}
}

func TestCurrency(t *testing.T) {
	if got := testCalculator().Currency(); got != "EUR" {
		t.Fatalf("expected EUR, got %q", got)
	}
}

func TestFormatDocumentNumber(t *testing.T) {
	if got := FormatDocumentNumber("Q", 2026, 1, 4); got != "Q-2026-0001" {
		t.Fatalf("expected Q-2026-0001, got %q", got)
	}
	if got := FormatDocumentNumber("INV", 2026, 42, 4); got != "INV-2026-0042" {
		t.Fatalf("expected INV-2026-0042, got %q", got)
	}
}

func TestSequenceOf(t *testing.T) {
	sequence, err := SequenceOf("Q-2026-0037")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sequence != 37 {
		t.Fatalf("expected 37, got %d", sequence)
	}

	for _, malformed := range []string{"Q20260001", "Q-2026-", "Q-2026-abc"} {
		if _, err := SequenceOf(malformed); err == nil {
			t.Fatalf("expected error for %q", malformed)
		}
	}
}
