package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
)

// DefaultWeekStart is Sunday 00:00 in Taipei (UTC+8).
const DefaultWeekStart = "CRON_TZ=Asia/Taipei 0 0 * * 0"

// lookback is how far before now the anchor search starts. A schedule that
// does not fire within this window cannot anchor a week.
const lookback = 8 * 24 * time.Hour

// WeekAnchor resolves the most recent week-start boundary from a cron rule.
// The rule carries its own civil timezone through CRON_TZ.
type WeekAnchor struct {
	spec     string
	schedule cron.Schedule
}

// NewWeekAnchor parses spec as a standard five-field cron expression.
func NewWeekAnchor(spec string) (*WeekAnchor, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidSchedule, err)
	}
	return &WeekAnchor{spec: spec, schedule: schedule}, nil
}

// Spec returns the cron expression the anchor was built from.
func (w *WeekAnchor) Spec() string {
	return w.spec
}

// Anchor returns the latest activation of the rule that is not after now.
// now falling exactly on a boundary returns now.
func (w *WeekAnchor) Anchor(now time.Time) (time.Time, error) {
	candidate := w.schedule.Next(now.Add(-lookback))
	if candidate.IsZero() || candidate.After(now) {
		return time.Time{}, fmt.Errorf("%w: %q does not fire at least weekly", apperrors.ErrInvalidSchedule, w.spec)
	}

	for {
		next := w.schedule.Next(candidate)
		if next.IsZero() || next.After(now) {
			return candidate.UTC(), nil
		}
		candidate = next
	}
}
