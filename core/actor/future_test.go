package actor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFuture_single_assignment(t *testing.T) {
	f := NewFuture[int]()

	_, _, ok := f.Poll()
	require.False(t, ok)

	require.True(t, f.complete(1, nil))
	require.False(t, f.complete(2, errors.New("late")))

	v, err, ok := f.Poll()
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestFuture_concurrent_waiters(t *testing.T) {
	f := NewFuture[string]()

	var wg sync.WaitGroup
	results := make(chan string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := f.Wait(context.Background())
			if err == nil {
				results <- v
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	f.complete("ok", nil)
	wg.Wait()
	close(results)

	n := 0
	for v := range results {
		require.Equal(t, "ok", v)
		n++
	}
	require.Equal(t, 10, n)
}

func TestFuture_wait_cancelled(t *testing.T) {
	f := NewFuture[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// abandoning the wait leaves the future usable
	f.complete(3, nil)
	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, v)
}

func TestFuture_on_complete(t *testing.T) {
	f := NewFuture[int]()
	boom := errors.New("boom")

	var got []error
	f.OnComplete(func(_ int, err error) { got = append(got, err) })
	f.complete(0, boom)
	f.OnComplete(func(_ int, err error) { got = append(got, err) })

	require.Equal(t, []error{boom, boom}, got)
}

func TestResolved(t *testing.T) {
	f := Resolved(7)
	v, err, ok := f.Poll()
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, 7, v)
}
