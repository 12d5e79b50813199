package money

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDocumentNumber builds numbers like Q-2026-0001 from a prefix, a
// year, a sequence and a zero-padding width.
func FormatDocumentNumber(prefix string, year, sequence, padding int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, padding, sequence)
}

// SequenceOf extracts the numeric sequence from a document number, i.e.
// the digits after the last dash.
func SequenceOf(documentNumber string) (int, error) {
	idx := strings.LastIndex(documentNumber, "-")
	if idx < 0 || idx == len(documentNumber)-1 {
		return 0, fmt.Errorf("malformed document number %q", documentNumber)
	}
	sequence, err := strconv.Atoi(documentNumber[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed document number %q: %w", documentNumber, err)
	}
	return sequence, nil
}
