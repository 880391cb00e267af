package catalog

import "time"

// DateLayout is the textual representation of a calendar day.
const DateLayout = time.DateOnly

// ToDate truncates t to its calendar day at midnight UTC.
func ToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a DateLayout string into a calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}

	return ToDate(t), nil
}

// FormatDate renders a calendar day using DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and [bStart, bEnd] share at least one day.
// Touching endpoints count as overlapping.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(aEnd.Before(bStart) || aStart.After(bEnd))
}
