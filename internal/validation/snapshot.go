package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// SnapshotInput is a validated snapshot ready to be recorded.
type SnapshotInput struct {
	Timestamp time.Time
	TotalNAV  decimal.Decimal
	Positions []model.PositionSnapshot
}

// ValidateRecordSnapshot validates a snapshot produced by the valuation job.
//
// Required fields:
//   - total_nav: a non-negative number
//   - positions[].value: a number
//
// Optional fields:
//   - timestamp: RFC3339; empty means "now" and is left zero here
//   - positions[].amount: a number when present
//
// Position values are not required to sum to total_nav.
func ValidateRecordSnapshot(req request.RecordSnapshotRequest) (SnapshotInput, error) {
	errors := make(map[string]string)
	var input SnapshotInput

	if ts := strings.TrimSpace(req.Timestamp); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			errors["timestamp"] = "timestamp must be RFC3339"
		} else {
			input.Timestamp = parsed.UTC()
		}
	}

	nav, msg := ParseAmount(req.TotalNAV)
	switch {
	case msg != "":
		errors["total_nav"] = strings.Replace(msg, "amount", "total_nav", 1)
	case nav.IsNegative():
		errors["total_nav"] = "total_nav must not be negative"
	default:
		input.TotalNAV = nav
	}

	input.Positions = make([]model.PositionSnapshot, 0, len(req.Positions))
	for i, p := range req.Positions {
		position := model.PositionSnapshot{
			Category: strings.TrimSpace(p.Category),
			Source:   strings.TrimSpace(p.Source),
			Asset:    strings.TrimSpace(p.Asset),
			Chain:    strings.TrimSpace(p.Chain),
		}

		value, msg := ParseAmount(p.Value)
		if msg != "" {
			errors[fmt.Sprintf("positions[%d].value", i)] = strings.Replace(msg, "amount", "value", 1)
		}
		position.Value = value

		if len(p.Amount) > 0 && string(p.Amount) != "null" {
			amount, msg := ParseAmount(p.Amount)
			if msg != "" {
				errors[fmt.Sprintf("positions[%d].amount", i)] = msg
			} else {
				position.Amount = model.NullDecimal(amount)
			}
		}

		input.Positions = append(input.Positions, position)
	}

	if len(errors) > 0 {
		return SnapshotInput{}, &Error{Fields: errors}
	}
	return input, nil
}
