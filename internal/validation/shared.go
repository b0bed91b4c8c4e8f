package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error is a field-level validation failure. Fields maps a field name to
// what is wrong with it.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
