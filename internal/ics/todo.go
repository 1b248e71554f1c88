package ics

import (
	"bytes"
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"
)

// Property is a single raw iCalendar property of a to-do item.
type Property struct {
	Key   string
	Value string
}

// RawItem is an unfiltered VTODO as delivered by a calendar server.
type RawItem struct {
	Properties []Property
}

// Map lower-cases property keys and collects them into a lookup table.
// When a key repeats, the last occurrence wins.
func (r RawItem) Map() map[string]string {
	out := make(map[string]string, len(r.Properties))
	for _, p := range r.Properties {
		out[strings.ToLower(p.Key)] = p.Value
	}
	return out
}

// ParseTodos parses an iCalendar payload and returns its VTODO components
// as raw property lists. Other component types are ignored.
func ParseTodos(body []byte) ([]RawItem, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty ICS body")
	}

	// Servers differ in line endings; the parser wants CRLF.
	body = bytes.ReplaceAll(body, []byte("\r\n"), []byte("\n"))
	body = bytes.ReplaceAll(body, []byte("\n"), []byte("\r\n"))
	if !bytes.HasSuffix(body, []byte("\r\n")) {
		body = append(body, '\r', '\n')
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	items := make([]RawItem, 0)
	for _, comp := range cal.Components {
		todo, ok := comp.(*ical.VTodo)
		if !ok {
			continue
		}
		item := RawItem{Properties: make([]Property, 0, len(todo.Properties))}
		for _, p := range todo.Properties {
			item.Properties = append(item.Properties, Property{Key: p.IANAToken, Value: p.Value})
		}
		items = append(items, item)
	}
	return items, nil
}
