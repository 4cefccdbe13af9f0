package sqlite

import (
	"database/sql"
	"time"
)

// bindTime normalizes a timestamp to UTC before binding. The driver stores
// timestamps as text including the zone offset, so a single shared offset is
// what makes SQL comparisons and ordering on those columns correct.
func bindTime(t time.Time) time.Time {
	return t.UTC()
}

// nullableTime converts the zero time to SQL NULL, normalizing to UTC
// otherwise.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
