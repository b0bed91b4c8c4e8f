package validation

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
)

// MaxNoteLength is the longest note a capital request may carry, in characters.
const MaxNoteLength = 500

// Bounds on a parsed amount: fewer than maxIntegerDigits digits before the
// decimal point and at most maxFractionDigits after it.
const (
	maxIntegerDigits  = 20
	maxFractionDigits = 18
)

// CapitalRequestInput is a validated capital request body.
type CapitalRequestInput struct {
	Amount decimal.Decimal
	Note   *string
}

// ValidateCapitalRequest validates a deposit or withdrawal submission.
//
// Required fields:
//   - amount: a JSON number or numeric string, strictly positive
//
// Optional fields:
//   - note: trimmed, at most MaxNoteLength characters; blank is dropped
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCapitalRequest(req request.CapitalRequestBody) (CapitalRequestInput, error) {
	errors := make(map[string]string)

	amount, msg := ParseAmount(req.Amount)
	if msg != "" {
		errors["amount"] = msg
	} else if !amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}

	var note *string
	if req.Note != nil {
		trimmed := strings.TrimSpace(*req.Note)
		if utf8.RuneCountInString(trimmed) > MaxNoteLength {
			errors["note"] = "note must be at most 500 characters"
		} else if trimmed != "" {
			note = &trimmed
		}
	}

	if len(errors) > 0 {
		return CapitalRequestInput{}, &Error{Fields: errors}
	}

	return CapitalRequestInput{Amount: amount, Note: note}, nil
}

// ParseAmount reads a decimal from a raw JSON value. A bare number and a
// quoted number are both accepted. The second return is a human readable
// problem, empty on success.
func ParseAmount(raw json.RawMessage) (decimal.Decimal, string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, "amount is required"
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, "amount must be a number"
		}
		text = strings.TrimSpace(s)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, "amount must be a number"
	}
	if !inRange(d) {
		return decimal.Zero, "amount is out of range"
	}
	return d, ""
}

// inRange reports whether d fits the amount bounds. It works on the
// coefficient digits and the exponent so that a value like 1e200000000 is
// never expanded.
func inRange(d decimal.Decimal) bool {
	digits := strings.TrimLeft(d.Coefficient().String(), "-")
	exp := int(d.Exponent())
	for len(digits) > 1 && digits[len(digits)-1] == '0' {
		digits = digits[:len(digits)-1]
		exp++
	}
	if digits == "0" {
		return true
	}
	return exp >= -maxFractionDigits && len(digits)+exp <= maxIntegerDigits
}
