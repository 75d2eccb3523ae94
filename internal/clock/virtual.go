package clock

import (
	"container/heap"
	"sync"
	"time"
)

// Epoch is the starting time of a Virtual scheduler created with NewVirtual.
var Epoch = time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC)

// Virtual is a Scheduler whose time only moves when told to.
//
// Pending timers live in a priority queue ordered by fire time, then by the
// order they were scheduled. Advance jumps straight to the target time and
// fires every due timer in order on the calling goroutine, so a test never
// has to step through intermediate ticks.
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue timerQueue
	micro []func()
}

// NewVirtual returns a Virtual scheduler starting at Epoch.
func NewVirtual() *Virtual {
	return NewVirtualAt(Epoch)
}

// NewVirtualAt returns a Virtual scheduler starting at start.
func NewVirtualAt(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// AfterFunc schedules fn to run once the clock reaches now+d.
// A non-positive d fires on the next Advance, including Advance(0).
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	return v.schedule(d, 0, fn)
}

// EveryFunc schedules fn at now+d, now+2d, and so on. It panics if d is not
// positive.
func (v *Virtual) EveryFunc(d time.Duration, fn func()) Timer {
	if d <= 0 {
		panic("clock: non-positive interval for EveryFunc")
	}
	return v.schedule(d, d, fn)
}

// Defer queues fn as a microtask. Microtasks run on Flush and around every
// timer fired by Advance.
func (v *Virtual) Defer(fn func()) {
	v.mu.Lock()
	v.micro = append(v.micro, fn)
	v.mu.Unlock()
}

// Flush runs queued microtasks until none remain, including microtasks
// queued while flushing. It returns how many ran.
func (v *Virtual) Flush() int {
	ran := 0
	for {
		v.mu.Lock()
		if len(v.micro) == 0 {
			v.mu.Unlock()
			return ran
		}
		fn := v.micro[0]
		v.micro[0] = nil
		v.micro = v.micro[1:]
		v.mu.Unlock()

		fn()
		ran++
	}
}

// Advance moves the clock forward by d, firing every timer that comes due.
// It returns the number of timer callbacks that ran.
func (v *Virtual) Advance(d time.Duration) int {
	return v.AdvanceTo(v.Now().Add(d))
}

// AdvanceTo moves the clock to t, firing every timer due at or before t in
// fire-time order. While a callback runs, Now reports that callback's fire
// time. Moving backwards is a no-op apart from flushing microtasks.
func (v *Virtual) AdvanceTo(t time.Time) int {
	fired := 0
	v.Flush()
	for {
		v.mu.Lock()
		if len(v.queue) == 0 || v.queue[0].at.After(t) {
			if t.After(v.now) {
				v.now = t
			}
			v.mu.Unlock()
			return fired
		}

		e := heap.Pop(&v.queue).(*virtualTimer)
		if e.at.After(v.now) {
			v.now = e.at
		}
		if e.period > 0 {
			e.at = e.at.Add(e.period)
			e.seq = v.nextSeq()
			heap.Push(&v.queue, e)
		} else {
			e.flag.fired = true
		}
		v.mu.Unlock()

		e.fn()
		fired++
		v.Flush()
	}
}

// Pending returns the number of scheduled timers.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queue)
}

// Next returns the fire time of the earliest pending timer.
func (v *Virtual) Next() (time.Time, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.queue) == 0 {
		return time.Time{}, false
	}
	return v.queue[0].at, true
}

func (v *Virtual) schedule(d, period time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	t := &virtualTimer{
		owner:  v,
		at:     v.now.Add(d),
		seq:    v.nextSeq(),
		period: period,
		fn:     fn,
		index:  -1,
	}
	heap.Push(&v.queue, t)
	return t
}

// nextSeq must be called with mu held.
func (v *Virtual) nextSeq() uint64 {
	v.seq++
	return v.seq
}

type virtualTimer struct {
	owner  *Virtual
	at     time.Time
	seq    uint64
	period time.Duration
	fn     func()
	flag   stopFlag
	index  int
}

func (t *virtualTimer) Stop() bool {
	v := t.owner
	v.mu.Lock()
	defer v.mu.Unlock()

	if !t.flag.stop() {
		return false
	}
	if t.index >= 0 {
		heap.Remove(&v.queue, t.index)
	}
	return true
}

// timerQueue implements heap.Interface.
type timerQueue []*virtualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*virtualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
