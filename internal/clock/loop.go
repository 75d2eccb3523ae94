package clock

import (
	"context"
	"sync"
	"time"
)

// Loop is a wall-clock Scheduler that runs every callback serially on the
// goroutine executing Run.
//
// Work may be posted from any goroutine and posting never blocks. Timer
// callbacks are marshalled onto the loop and checked for cancellation there,
// so stopping a timer from inside a loop callback guarantees it never runs,
// even if the wall-clock deadline already passed.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	micro []func()
	wake  chan struct{}
}

// NewLoop creates an idle loop. Call Run to start executing work.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time { return time.Now() }

// Post queues fn to run on the loop.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.signal()
}

// Call posts fn and waits for it to finish or for ctx to end.
// Calling it from inside a loop callback deadlocks until ctx ends.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Defer queues fn as a microtask, run before the next posted task or timer.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	l.micro = append(l.micro, fn)
	l.mu.Unlock()
	l.signal()
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			t.mu.Lock()
			if t.flag.stopped {
				t.mu.Unlock()
				return
			}
			t.flag.fired = true
			t.mu.Unlock()
			fn()
		})
	})
	return t
}

// EveryFunc runs fn on the loop every d. Deadlines are computed from the
// start time so the period does not drift with callback latency.
func (l *Loop) EveryFunc(d time.Duration, fn func()) Timer {
	if d <= 0 {
		panic("clock: non-positive interval for EveryFunc")
	}
	t := &loopTimer{period: d, next: time.Now().Add(d)}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.arm(l, fn)
	return t
}

// Run executes posted work until ctx is done. Microtasks drain before every
// task.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drainMicro()
		if fn, ok := l.popTask(); ok {
			fn()
			continue
		}
		select {
		case <-l.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) drainMicro() {
	for {
		l.mu.Lock()
		if len(l.micro) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		l.mu.Unlock()
		fn()
	}
}

func (l *Loop) popTask() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn, true
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

type loopTimer struct {
	mu     sync.Mutex
	flag   stopFlag
	timer  *time.Timer
	period time.Duration
	next   time.Time
}

// arm must be called with t.mu held.
func (t *loopTimer) arm(l *Loop, fn func()) {
	t.timer = time.AfterFunc(time.Until(t.next), func() {
		l.Post(func() {
			t.mu.Lock()
			if t.flag.stopped {
				t.mu.Unlock()
				return
			}
			t.next = t.next.Add(t.period)
			t.arm(l, fn)
			t.mu.Unlock()
			fn()
		})
	})
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.flag.stop() {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}
