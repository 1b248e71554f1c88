package ics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"date only is midnight UTC", "20240115", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"utc date-time", "20240115T133000Z", time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC)},
		{"floating date-time read at zero offset", "20240115T133000", time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseDateZones(t *testing.T) {
	got, err := ParseDate("20240115T133000Z")
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())

	got, err = ParseDate("20240115")
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())

	got, err = ParseDate("20240115T133000")
	require.NoError(t, err)
	name, offset := got.Zone()
	assert.Equal(t, "Local", name)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 13, got.Hour())
}

func TestParseDateRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"2024011",
		"202401150",
		"2024-01-15",
		"20240115T",
		"20240115T1330",
		"20240115T133000ZZ",
		"20240115T133000X",
		"20240115t133000",
		"20241315",
		"20240230",
		"20240115T250000",
		" 20240115",
		"20240115T13300a",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDate(in)
			require.Error(t, err)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
			assert.Equal(t, in, pe.Input)
		})
	}
}
