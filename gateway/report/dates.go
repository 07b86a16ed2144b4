package report

import "time"

const dateLayout = "2006-01-02"

// today is the current UTC date truncated to midnight.
func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// monthsAgo subtracts calendar months via time.AddDate, so month-end
// overflow rolls forward (Mar 31 minus one month yields Mar 3). That is the
// documented boundary policy for every date_from cutoff in this package.
func monthsAgo(from time.Time, months int) string {
	return from.AddDate(0, -months, 0).Format(dateLayout)
}

// parseRecordTime parses a timestamp field as RFC 3339, falling back to a
// bare date. Returns the zero time when the value is absent or malformed.
func parseRecordTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t
	}
	return time.Time{}
}
