package clock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// runLoop starts l in the background and stops it when the test ends.
func runLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestLoop_PostRunsSerially(t *testing.T) {
	l := NewLoop()
	runLoop(t, l)

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		i := i
		l.Post(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestLoop_DeferRunsBeforeNextTask(t *testing.T) {
	l := NewLoop()
	var order []string
	done := make(chan struct{})

	// Queue before Run so ordering is deterministic.
	l.Post(func() {
		order = append(order, "task1")
		l.Defer(func() { order = append(order, "micro") })
	})
	l.Post(func() {
		order = append(order, "task2")
		close(done)
	})
	runLoop(t, l)

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for tasks")
	}
	require.Equal(t, []string{"task1", "micro", "task2"}, order)
}

func TestLoop_AfterFunc(t *testing.T) {
	l := NewLoop()
	runLoop(t, l)

	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for timer")
	}
}

func TestLoop_StopOnLoopBeatsDueTimer(t *testing.T) {
	l := NewLoop()
	runLoop(t, l)

	fired := make(chan struct{}, 1)
	stopped := make(chan bool, 1)

	err := l.Call(context.Background(), func() {
		timer := l.AfterFunc(time.Millisecond, func() { fired <- struct{}{} })
		// Hold the loop past the deadline so the wall-clock timer has already
		// posted its callback by the time we stop it.
		time.Sleep(20 * time.Millisecond)
		stopped <- timer.Stop()
	})
	require.NoError(t, err)
	require.True(t, <-stopped)

	// Drain anything already queued behind the stop.
	require.NoError(t, l.Call(context.Background(), func() {}))

	select {
	case <-fired:
		require.Fail(t, "stopped timer must not fire")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestLoop_EveryFuncUntilStopped(t *testing.T) {
	l := NewLoop()
	runLoop(t, l)

	ticks := make(chan struct{}, 16)
	var timer Timer
	count := 0
	require.NoError(t, l.Call(context.Background(), func() {
		timer = l.EveryFunc(5*time.Millisecond, func() {
			count++
			if count == 3 {
				timer.Stop()
			}
			ticks <- struct{}{}
		})
	}))

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			require.Fail(t, "timeout waiting for tick", "tick %d", i)
		}
	}

	select {
	case <-ticks:
		require.Fail(t, "ticker must stop after three ticks")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestLoop_CallHonoursContext(t *testing.T) {
	l := NewLoop() // never run

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Call(ctx, func() {})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	now := Real{}.Now()
	require.False(t, now.Before(before))
}
