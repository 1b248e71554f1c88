package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReloaderRejectsBadSpec(t *testing.T) {
	_, err := NewReloader("every now and then", func() {})
	assert.Error(t, err)
}

func TestReloaderFires(t *testing.T) {
	fired := make(chan struct{}, 4)
	r, err := NewReloader("@every 1s", func() { fired <- struct{}{} })
	require.NoError(t, err)
	r.Start()
	defer r.Stop()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never ran")
	}
}
