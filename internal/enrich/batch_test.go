package enrich

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestRunnerProgressPerGroup(t *testing.T) {
	var progress [][2]int
	runner := &Runner{
		Size:       5,
		Concurrent: true,
		OnProgress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
		pause: noSleep,
	}

	var mu sync.Mutex
	var seen []int
	err := runner.Run(context.Background(), 12, func(_ context.Context, idx int) {
		mu.Lock()
		seen = append(seen, idx)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Len(t, seen, 12)
	assert.Equal(t, [][2]int{{5, 12}, {10, 12}, {12, 12}}, progress)
}

func TestRunnerSequentialDelaysBetweenItems(t *testing.T) {
	var waits []time.Duration
	runner := &Runner{
		Size:  5,
		Delay: 2 * time.Second,
		pause: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}

	var order []int
	err := runner.Run(context.Background(), 3, func(_ context.Context, idx int) {
		order = append(order, idx)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, waits)
}

func TestRunnerConcurrentDelaysBetweenGroups(t *testing.T) {
	var waits []time.Duration
	runner := &Runner{
		Size:       2,
		Delay:      time.Second,
		Concurrent: true,
		pause: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}

	err := runner.Run(context.Background(), 5, func(context.Context, int) {})
	require.NoError(t, err)

	// Three groups (2, 2, 1) so two inter-group pauses.
	assert.Equal(t, []time.Duration{time.Second, time.Second}, waits)
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &Runner{Size: 1, pause: noSleep}
	calls := 0
	err := runner.Run(ctx, 10, func(context.Context, int) { calls++ })

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
