// Package washdate provides the calendar arithmetic for wash-sale windows.
// All functions operate on naive calendar dates normalized to midnight UTC;
// no timezone or DST ambiguity is involved.
package washdate

import (
	"fmt"
	"time"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/apperrors"
)

// DateFormat is the canonical ISO-8601 date layout used throughout storage
// and the API boundary.
const DateFormat = "2006-01-02"

// washSaleDays is the repurchase exclusion window after a loss sale. The IRS
// rule is 30 days; day 31 is the first safe repurchase date.
const washSaleDays = 31

// TargetDate returns the first safe repurchase date for a sale on sellDate:
// sellDate + 31 days, rolled forward to Monday when it lands on a weekend.
// Holidays are intentionally not adjusted for.
func TargetDate(sellDate time.Time) time.Time {
	target := Normalize(sellDate).AddDate(0, 0, washSaleDays)
	switch target.Weekday() {
	case time.Saturday:
		target = target.AddDate(0, 0, 2)
	case time.Sunday:
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// DaysRemaining returns the whole-day distance from today to targetDate.
// Zero means due today; negative means the target date has passed.
func DaysRemaining(targetDate, today time.Time) int {
	return int(Normalize(targetDate).Sub(Normalize(today)).Hours() / 24)
}

// Normalize truncates t to a calendar date at midnight UTC.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a date in "2006-01-02" or RFC3339 format, normalized to
// midnight UTC. Malformed input wraps apperrors.ErrInvalidDate.
func ParseDate(str string) (time.Time, error) {
	t, err := time.Parse(DateFormat, str)
	if err != nil {
		t, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, str)
		}
	}
	return Normalize(t), nil
}

// Today returns the current calendar date at midnight UTC.
func Today() time.Time {
	return Normalize(time.Now().UTC())
}
