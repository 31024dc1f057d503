package academicyear

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shubhamprakashrai/school-connect-sub001/internal/shared/clock"
)

// The academic year runs April through March. A date in April or later
// belongs to "{Y}-{Y+1}", anything earlier to "{Y-1}-{Y}".
const boundaryMonth = time.April

var keyPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// FromDate resolves the academic-year key for a reference date.
func FromDate(t time.Time) string {
	year := t.Year()
	if t.Month() >= boundaryMonth {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// Current resolves the academic-year key for the clock's "now".
func Current(c clock.Clock) string {
	return FromDate(c.Now())
}

// IsValidKey reports whether s looks like an academic-year key ("2025-2026").
func IsValidKey(s string) bool {
	return keyPattern.MatchString(s)
}
