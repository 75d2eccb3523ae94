package behavior

import (
	"time"

	"github.com/zjrosen/treelights/internal/clock"
)

// Of yields each value synchronously upon subscription, then completes.
func Of[T any](values ...T) Behavior[T] {
	return Func[T](func(_ clock.Scheduler, sink *Sink[T]) {
		for _, v := range values {
			if sink.Closed() {
				return
			}
			sink.Next(v)
		}
		sink.Complete()
	})
}

// Deferred yields v on the next microtask, then completes. It behaves like an
// already-resolved promise: nothing is observed until the current task ends.
func Deferred[T any](v T) Behavior[T] {
	return Func[T](func(sched clock.Scheduler, sink *Sink[T]) {
		sched.Defer(func() {
			sink.Next(v)
			sink.Complete()
		})
	})
}

// After yields v once d has elapsed, then completes.
func After[T any](d time.Duration, v T) Behavior[T] {
	return Func[T](func(sched clock.Scheduler, sink *Sink[T]) {
		sink.AddTimer(sched.AfterFunc(d, func() {
			sink.Next(v)
			sink.Complete()
		}))
	})
}

// Interval yields f(0) after d, f(1) after 2d, and so on. It never completes.
func Interval[T any](d time.Duration, f func(i int) T) Behavior[T] {
	return Func[T](func(sched clock.Scheduler, sink *Sink[T]) {
		i := 0
		sink.AddTimer(sched.EveryFunc(d, func() {
			v := f(i)
			i++
			sink.Next(v)
		}))
	})
}

// Throw fails immediately with err.
func Throw[T any](err error) Behavior[T] {
	return Func[T](func(_ clock.Scheduler, sink *Sink[T]) {
		sink.Error(err)
	})
}

// Never yields nothing and never completes.
func Never[T any]() Behavior[T] {
	return Func[T](func(clock.Scheduler, *Sink[T]) {})
}
