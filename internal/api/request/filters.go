package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// ParseRequestFilter extracts and validates a capital request listing filter
// from query parameters. All parameters are optional.
//
// Validation rules:
//   - kind: deposit or withdrawal (case-insensitive)
//   - status: PENDING or SETTLED (case-insensitive)
//   - limit: a positive integer
//
// Returns an error if any parameter fails validation.
func ParseRequestFilter(kindParam, statusParam, limitParam string) (model.RequestFilter, error) {
	var filter model.RequestFilter

	if kind := strings.TrimSpace(strings.ToLower(kindParam)); kind != "" {
		if !model.ValidRequestKinds[model.RequestKind(kind)] {
			return model.RequestFilter{}, fmt.Errorf("invalid kind: %s", kindParam)
		}
		filter.Kind = model.RequestKind(kind)
	}

	if status := strings.TrimSpace(strings.ToUpper(statusParam)); status != "" {
		if !model.ValidRequestStatuses[model.RequestStatus(status)] {
			return model.RequestFilter{}, fmt.Errorf("invalid status: %s", statusParam)
		}
		filter.Status = model.RequestStatus(status)
	}

	if limitParam != "" {
		limit, err := ParseLimit(limitParam)
		if err != nil {
			return model.RequestFilter{}, err
		}
		filter.Limit = limit
	}

	return filter, nil
}

// ParseLimit parses a positive integer limit. An empty string returns 0,
// which callers treat as "use the default".
func ParseLimit(limitParam string) (int, error) {
	limitParam = strings.TrimSpace(limitParam)
	if limitParam == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(limitParam)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: %s", limitParam)
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return limit, nil
}
