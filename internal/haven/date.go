package haven

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ReleaseDateLayout is the only accepted release date format.
const ReleaseDateLayout = "2006-01-02"

// ParseReleaseDate parses a release date typed by the user.
// An empty string means the date is unknown.
func ParseReleaseDate(s string) (sql.NullTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(ReleaseDateLayout, s)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("%w: release date %q is not in YYYY-MM-DD form", ErrParse, s)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

// FormatReleaseDate renders a release date for display.
func FormatReleaseDate(d sql.NullTime) string {
	if !d.Valid {
		return "unknown"
	}
	return d.Time.Format(ReleaseDateLayout)
}
