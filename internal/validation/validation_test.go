package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
)

func strPtr(s string) *string { return &s }

func TestValidateCapitalRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      request.CapitalRequestBody
		wantField string
		wantMsg   string
		want      string
	}{
		{name: "bare number", body: request.CapitalRequestBody{Amount: json.RawMessage(`250.5`)}, want: "250.5"},
		{name: "quoted number", body: request.CapitalRequestBody{Amount: json.RawMessage(`" 1000 "`)}, want: "1000"},
		{name: "negative", body: request.CapitalRequestBody{Amount: json.RawMessage(`-5`)}, wantField: "amount", wantMsg: "amount must be positive"},
		{name: "zero", body: request.CapitalRequestBody{Amount: json.RawMessage(`0`)}, wantField: "amount", wantMsg: "amount must be positive"},
		{name: "text", body: request.CapitalRequestBody{Amount: json.RawMessage(`"lots"`)}, wantField: "amount", wantMsg: "amount must be a number"},
		{name: "boolean", body: request.CapitalRequestBody{Amount: json.RawMessage(`true`)}, wantField: "amount", wantMsg: "amount must be a number"},
		{name: "missing", body: request.CapitalRequestBody{}, wantField: "amount", wantMsg: "amount is required"},
		{name: "null", body: request.CapitalRequestBody{Amount: json.RawMessage(`null`)}, wantField: "amount", wantMsg: "amount is required"},
		{name: "huge exponent", body: request.CapitalRequestBody{Amount: json.RawMessage(`"1e200000000"`)}, wantField: "amount", wantMsg: "amount is out of range"},
		{name: "tiny exponent", body: request.CapitalRequestBody{Amount: json.RawMessage(`1e-200000000`)}, wantField: "amount", wantMsg: "amount is out of range"},
		{name: "twenty integer digits", body: request.CapitalRequestBody{Amount: json.RawMessage(`100000000000000000000`)}, wantField: "amount", wantMsg: "amount is out of range"},
		{name: "nineteen fractional digits", body: request.CapitalRequestBody{Amount: json.RawMessage(`0.0000000000000000001`)}, wantField: "amount", wantMsg: "amount is out of range"},
		{name: "largest integer part", body: request.CapitalRequestBody{Amount: json.RawMessage(`99999999999999999999`)}, want: "99999999999999999999"},
		{name: "smallest fraction", body: request.CapitalRequestBody{Amount: json.RawMessage(`0.000000000000000001`)}, want: "0.000000000000000001"},
		{name: "trailing zeros", body: request.CapitalRequestBody{Amount: json.RawMessage(`"5.000000000000000000000000"`)}, want: "5"},
		{name: "exponent within range", body: request.CapitalRequestBody{Amount: json.RawMessage(`1.5e3`)}, want: "1500"},
		{
			name:      "note too long",
			body:      request.CapitalRequestBody{Amount: json.RawMessage(`1`), Note: strPtr(strings.Repeat("x", 501))},
			wantField: "note",
			wantMsg:   "note must be at most 500 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := ValidateCapitalRequest(tt.body)
			if tt.wantField != "" {
				var verr *Error
				require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
				assert.Equal(t, tt.wantMsg, verr.Fields[tt.wantField])
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(input.Amount))
		})
	}
}

func TestValidateCapitalRequest_Note(t *testing.T) {
	input, err := ValidateCapitalRequest(request.CapitalRequestBody{
		Amount: json.RawMessage(`10`),
		Note:   strPtr("  monthly top-up  "),
	})
	require.NoError(t, err)
	require.NotNil(t, input.Note)
	assert.Equal(t, "monthly top-up", *input.Note)

	input, err = ValidateCapitalRequest(request.CapitalRequestBody{
		Amount: json.RawMessage(`10`),
		Note:   strPtr("   "),
	})
	require.NoError(t, err)
	assert.Nil(t, input.Note, "blank note is dropped")
}

func TestValidateRecordSnapshot(t *testing.T) {
	t.Run("valid snapshot", func(t *testing.T) {
		input, err := ValidateRecordSnapshot(request.RecordSnapshotRequest{
			Timestamp: "2026-03-01T08:00:00+08:00",
			TotalNAV:  json.RawMessage(`10000`),
			Positions: []request.PositionInput{
				{Category: " CEX ", Asset: "BTC", Value: json.RawMessage(`"6000.25"`), Amount: json.RawMessage(`0.1`)},
				{Category: "DeFi", Value: json.RawMessage(`3999.75`)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "2026-03-01T00:00:00Z", input.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
		assert.True(t, decimal.NewFromInt(10000).Equal(input.TotalNAV))
		require.Len(t, input.Positions, 2)
		assert.Equal(t, "CEX", input.Positions[0].Category)
		assert.True(t, input.Positions[0].Amount.Valid)
		assert.False(t, input.Positions[1].Amount.Valid)
	})

	t.Run("collects every field error", func(t *testing.T) {
		_, err := ValidateRecordSnapshot(request.RecordSnapshotRequest{
			Timestamp: "yesterday",
			TotalNAV:  json.RawMessage(`-1`),
			Positions: []request.PositionInput{{Value: json.RawMessage(`"x"`)}},
		})

		var verr *Error
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "timestamp")
		assert.Contains(t, verr.Fields, "total_nav")
		assert.Equal(t, "value must be a number", verr.Fields["positions[0].value"])
	})

	t.Run("rejects out of range values", func(t *testing.T) {
		_, err := ValidateRecordSnapshot(request.RecordSnapshotRequest{
			TotalNAV:  json.RawMessage(`1e200000000`),
			Positions: []request.PositionInput{{Category: "CEX", Value: json.RawMessage(`"1e-200000000"`)}},
		})

		var verr *Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "total_nav is out of range", verr.Fields["total_nav"])
		assert.Equal(t, "value is out of range", verr.Fields["positions[0].value"])
	})
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID("550e8400-e29b-41d4-a716-446655440000"))
	assert.ErrorIs(t, ValidateUUID("not-a-uuid"), apperrors.ErrInvalidUUID)
}

func TestErrorMessageIsStable(t *testing.T) {
	err := &Error{Fields: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "a: first; b: second", err.Error())
}
