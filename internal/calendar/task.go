package calendar

import (
	"strconv"
	"time"

	"tasktimer/internal/ics"
	"tasktimer/internal/model"
)

const unknownText = "???"

// defaultStamp stands in for a missing or unreadable DTSTAMP.
var defaultStamp = time.Unix(0, 0).UTC()

// Keep reports whether a to-do, given its lower-cased properties, is still
// open and non-recurring.
func Keep(props map[string]string) bool {
	if props["status"] == "COMPLETED" {
		return false
	}
	if _, ok := props["completed"]; ok {
		return false
	}
	if props["percent-complete"] == "100" {
		return false
	}
	if _, ok := props["rrule"]; ok {
		return false
	}
	return true
}

// ToTask maps lower-cased to-do properties onto a Task. Unparseable dates
// count as absent and an unparseable priority becomes the default.
func ToTask(props map[string]string) model.Task {
	t := model.Task{
		UID:      unknownText,
		Stamp:    defaultStamp,
		Summary:  unknownText,
		Priority: model.DefaultPriority,
	}
	if v, ok := props["uid"]; ok {
		t.UID = v
	}
	if v, ok := props["summary"]; ok {
		t.Summary = v
	}
	if ts, ok := parseDate(props, "dtstamp"); ok {
		t.Stamp = ts
	}
	if ts, ok := parseDate(props, "dtstart"); ok {
		t.Starts = &ts
	}
	if ts, ok := parseDate(props, "due"); ok {
		t.Due = &ts
	}
	if v, ok := props["priority"]; ok {
		if p, err := strconv.ParseInt(v, 10, 8); err == nil {
			t.Priority = int8(p)
		}
	}
	return t
}

func parseDate(props map[string]string, key string) (time.Time, bool) {
	v, ok := props[key]
	if !ok {
		return time.Time{}, false
	}
	ts, err := ics.ParseDate(v)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
