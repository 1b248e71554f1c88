package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTodos = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VTODO
UID:todo-1
DTSTAMP:20240110T090000Z
SUMMARY:Write report
PRIORITY:3
DUE:20240120
END:VTODO
BEGIN:VEVENT
UID:event-1
DTSTAMP:20240110T090000Z
DTSTART:20240111T090000Z
SUMMARY:Meeting
END:VEVENT
BEGIN:VTODO
UID:todo-2
SUMMARY:Done already
STATUS:COMPLETED
END:VTODO
END:VCALENDAR
`

func TestParseTodosKeepsOnlyTodos(t *testing.T) {
	body := strings.ReplaceAll(sampleTodos, "\n", "\r\n")
	items, err := ParseTodos([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0].Map()
	assert.Equal(t, "todo-1", first["uid"])
	assert.Equal(t, "Write report", first["summary"])
	assert.Equal(t, "3", first["priority"])
	assert.Equal(t, "20240120", first["due"])

	second := items[1].Map()
	assert.Equal(t, "COMPLETED", second["status"])
}

func TestParseTodosEmptyBody(t *testing.T) {
	_, err := ParseTodos([]byte("  \n"))
	assert.Error(t, err)
}

func TestRawItemMapLowercasesKeys(t *testing.T) {
	item := RawItem{Properties: []Property{
		{Key: "PERCENT-COMPLETE", Value: "100"},
		{Key: "Summary", Value: "x"},
	}}
	m := item.Map()
	assert.Equal(t, "100", m["percent-complete"])
	assert.Equal(t, "x", m["summary"])
}
