package repository

import (
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/apperrors"
)

// timestampFormat is how mutating operations write created_at/updated_at.
const timestampFormat = time.RFC3339

// ParseTime parses a date string in "2006-01-02", RFC3339, or SQLite
// CURRENT_TIMESTAMP format. All values are returned in UTC.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// mapStoreErr translates driver-level contention errors into the Busy
// sentinel. SQLITE_BUSY surfaces only after the busy_timeout bounded wait
// has been exhausted, so callers may safely retry the single operation.
func mapStoreErr(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return apperrors.ErrStoreBusy
		}
	}
	return err
}
