package ics

import (
	"fmt"
	"time"
)

const (
	layoutDate     = "20060102"
	layoutDateTime = "20060102T150405"
)

// floatingZone is the zone attached to floating date-times. It carries a
// zero offset: the digits are taken as UTC and only labelled local.
var floatingZone = time.FixedZone("Local", 0)

// ParseError reports a value that does not match the date grammar.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ics: invalid date %q: %s", e.Input, e.Reason)
}

// ParseDate parses the restricted iCalendar date grammar
//
//	YYYYMMDD ["T" HHMMSS ["Z"]]
//
// Date-only and UTC forms are returned in time.Local. Floating date-times
// (no "Z") are read at a zero offset and returned in a zero-offset zone
// named "Local"; no real local-timezone correction is applied.
func ParseDate(v string) (time.Time, error) {
	switch {
	case len(v) == 8:
		if !allDigits(v) {
			return time.Time{}, &ParseError{Input: v, Reason: "date must be 8 digits"}
		}
		t, err := time.Parse(layoutDate, v)
		if err != nil {
			return time.Time{}, &ParseError{Input: v, Reason: err.Error()}
		}
		return t.In(time.Local), nil

	case len(v) == 15 || len(v) == 16:
		if !allDigits(v[:8]) || v[8] != 'T' || !allDigits(v[9:15]) {
			return time.Time{}, &ParseError{Input: v, Reason: "expected YYYYMMDDTHHMMSS"}
		}
		utc := len(v) == 16
		if utc && v[15] != 'Z' {
			return time.Time{}, &ParseError{Input: v, Reason: "unexpected trailing character"}
		}
		t, err := time.Parse(layoutDateTime, v[:15])
		if err != nil {
			return time.Time{}, &ParseError{Input: v, Reason: err.Error()}
		}
		if utc {
			return t.In(time.Local), nil
		}
		return t.In(floatingZone), nil

	default:
		return time.Time{}, &ParseError{Input: v, Reason: "unexpected length"}
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
