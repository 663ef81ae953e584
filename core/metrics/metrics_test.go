package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewTimer(t *testing.T) {
	var got float64
	tm := NewTimer(func(s float64) { got = s })
	time.Sleep(5 * time.Millisecond)
	tm.ObserveDuration()
	require.Greater(t, got, 0.004)
}

func TestNopTimer(t *testing.T) {
	require.NotPanics(t, func() { NopTimer().ObserveDuration() })
}
