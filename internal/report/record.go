package report

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Record is an opaque JSON object returned by the backend. Entities and notes
// share the representation; only a handful of fields are ever inspected.
type Record map[string]any

var numericID = regexp.MustCompile(`^\d+$`)

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
}

// ID returns the stringified id, or false when it is absent, null or empty.
func (r Record) ID() (string, bool) {
	id, ok := scalarString(r.first("id"))
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// CreatedBy returns the creator id as a string.
func (r Record) CreatedBy() (string, bool) {
	return scalarString(r.first("created_by", "createdBy"))
}

// Owner returns the owner field, which upstream sometimes fills with a
// display name instead of an id.
func (r Record) Owner() (string, bool) {
	return scalarString(r.first("owner_id", "ownerId", "owner"))
}

// CreatedAt parses the creation timestamp. Naive timestamps are read in loc.
func (r Record) CreatedAt(loc *time.Location) (time.Time, bool) {
	return parseTimestamp(r.first("created_at", "createdAt"), loc)
}

func (r Record) first(keys ...string) any {
	for _, key := range keys {
		if v, ok := r[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// matcher decides which entities and notes count toward one user's report.
type matcher struct {
	userID string
	window DateRange
	loc    *time.Location
}

// addedToSystem reports whether the user created or numerically owns the
// entity and it was created inside the window.
func (m matcher) addedToSystem(e Record) bool {
	if !m.inWindow(e) {
		return false
	}
	if createdBy, ok := e.CreatedBy(); ok && createdBy == m.userID {
		return true
	}
	owner, ok := e.Owner()
	return ok && numericID.MatchString(owner) && owner == m.userID
}

// noteCounts reports whether the user authored the note inside the window.
func (m matcher) noteCounts(n Record) bool {
	createdBy, ok := n.CreatedBy()
	if !ok || createdBy != m.userID {
		return false
	}
	return m.inWindow(n)
}

func (m matcher) inWindow(r Record) bool {
	ts, ok := r.CreatedAt(m.loc)
	return ok && m.window.Contains(ts)
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}

func parseTimestamp(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch val := v.(type) {
	case string:
		return parseTimestampString(strings.TrimSpace(val), loc)
	case json.Number:
		if ms, err := val.Int64(); err == nil {
			return time.UnixMilli(ms), true
		}
		if f, err := val.Float64(); err == nil {
			return time.UnixMicro(int64(f * 1000)), true
		}
	case float64:
		return time.UnixMicro(int64(val * 1000)), true
	case int64:
		return time.UnixMilli(val), true
	}
	return time.Time{}, false
}

func parseTimestampString(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
