package report

import (
	"net/url"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ValidationError reports a request that cannot produce a meaningful report.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DateRange is an inclusive reporting window. Start and End echo the caller's
// YYYY-MM-DD bounds; StartTime and EndTime are the resolved instants used for
// comparisons.
type DateRange struct {
	Start     string
	End       string
	StartTime time.Time
	EndTime   time.Time
}

// RangeParams resolves the start and end bounds from query parameters,
// accepting start/startDate and end/endDate.
func RangeParams(q url.Values) (start, end string) {
	return firstNonEmpty(q.Get("start"), q.Get("startDate")), firstNonEmpty(q.Get("end"), q.Get("endDate"))
}

// ParseRange validates a pair of YYYY-MM-DD bounds. The start resolves to
// 00:00:00.000 and the end to 23:59:59.999, both in loc.
func ParseRange(start, end string, loc *time.Location) (DateRange, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, &ValidationError{Message: "start and end are required (YYYY-MM-DD)"}
	}
	if start > end {
		return DateRange{}, &ValidationError{Message: "start must be <= end"}
	}
	if loc == nil {
		loc = time.Local
	}

	startDay, startErr := time.ParseInLocation(dateLayout, start, loc)
	endDay, endErr := time.ParseInLocation(dateLayout, end, loc)
	if startErr != nil || endErr != nil {
		return DateRange{}, &ValidationError{Message: "Invalid start/end date format"}
	}

	return DateRange{
		Start:     start,
		End:       end,
		StartTime: startDay,
		EndTime:   time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, int(999*time.Millisecond), loc),
	}, nil
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.StartTime) && !t.After(r.EndTime)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
