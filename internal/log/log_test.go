package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel(" ERROR "))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestFieldsIgnoresMalformedPairs(t *testing.T) {
	f := fields("a", 1, 2, "skipped", "b", "x", "dangling")
	assert.Equal(t, 2, len(f))
	assert.Equal(t, 1, f["a"])
	assert.Equal(t, "x", f["b"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelError)
	defer SetLevel(LevelInfo)

	Info("hidden", "k", "v")
	assert.Empty(t, buf.String())

	Error("visible", errors.New("boom"), "uid", "abc")
	out := buf.String()
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "uid=abc")
}
