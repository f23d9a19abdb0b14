package bulk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glefebvre/mediadesk/internal/logger"
)

func TestRun_AggregatesInInputOrder(t *testing.T) {
	r := NewRunner(0, logger.Discard())
	errBoom := errors.New("boom")

	res := r.Run(context.Background(), []int{1, 2, 3, 4, 5}, func(_ context.Context, id int) error {
		switch id {
		case 2:
			return errBoom
		case 4:
			return Skipped("season unknown")
		}
		return nil
	})

	assert.Equal(t, []int{1, 3, 5}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 2, res.Failed[0].ID)
	assert.ErrorIs(t, res.Failed[0].Err, errBoom)
	assert.Equal(t, []Skip{{ID: 4, Reason: "season unknown"}}, res.Skipped)
	assert.Equal(t, 5, res.Total())
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err(), errBoom)
}

func TestRun_FailureDoesNotStopOthers(t *testing.T) {
	r := NewRunner(1, logger.Discard())
	var calls int32

	res := r.Run(context.Background(), []int{1, 2, 3}, func(_ context.Context, id int) error {
		atomic.AddInt32(&calls, 1)
		if id == 1 {
			return errors.New("first fails")
		}
		return nil
	})

	assert.Equal(t, int32(3), calls)
	assert.Equal(t, []int{2, 3}, res.Succeeded)
}

func TestRun_RespectsConcurrencyLimit(t *testing.T) {
	r := NewRunner(2, logger.Discard())
	var inFlight, peak int32

	r.Run(context.Background(), []int{1, 2, 3, 4, 5, 6}, func(_ context.Context, _ int) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRun_CancelledContext(t *testing.T) {
	r := NewRunner(0, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	res := r.Run(ctx, []int{1, 2}, func(_ context.Context, _ int) error {
		called = true
		return nil
	})

	assert.False(t, called)
	require.Len(t, res.Failed, 2)
	assert.ErrorIs(t, res.Failed[0].Err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	res := NewRunner(0, logger.Discard()).Run(context.Background(), nil, func(context.Context, int) error {
		t.Fatal("fn must not be called")
		return nil
	})
	assert.Equal(t, 0, res.Total())
	assert.True(t, res.OK())
	assert.NoError(t, res.Err())
}

func TestEach_ItemIDs(t *testing.T) {
	type file struct {
		id   int
		path string
	}
	files := []file{{10, "a"}, {20, "b"}}

	res := Each(context.Background(), NewRunner(0, logger.Discard()), files,
		func(f file) int { return f.id },
		func(_ context.Context, f file) error {
			if f.path == "b" {
				return Skipped("no episode")
			}
			return nil
		})

	assert.Equal(t, []int{10}, res.Succeeded)
	assert.Equal(t, []Skip{{ID: 20, Reason: "no episode"}}, res.Skipped)
}

func TestWithProgress(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	r := NewRunner(0, logger.Discard()).WithProgress(func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		seen = append(seen, completed)
	})

	r.Run(context.Background(), []int{1, 2, 3}, func(context.Context, int) error { return nil })

	assert.ElementsMatch(t, []int{1, 2, 3}, seen)
}

func TestResult_Merge(t *testing.T) {
	a := Result{Succeeded: []int{1}}
	b := Result{Failed: []Failure{{ID: 2, Err: errors.New("x")}}, Skipped: []Skip{{ID: 3}}}

	m := a.Merge(b)
	assert.Equal(t, 3, m.Total())
	assert.False(t, m.OK())
}

func TestConcurrency(t *testing.T) {
	assert.Equal(t, 0, NewRunner(-3, logger.Discard()).Concurrency())
	assert.Equal(t, 4, NewRunner(4, logger.Discard()).Concurrency())
}
