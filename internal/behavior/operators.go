package behavior

import "github.com/zjrosen/treelights/internal/clock"

// Concat subscribes to each behavior in turn, moving to the next when the
// previous completes. An error from any of them ends the whole sequence.
func Concat[T any](behaviors ...Behavior[T]) Behavior[T] {
	return Func[T](func(sched clock.Scheduler, sink *Sink[T]) {
		var subscribeAt func(i int)
		subscribeAt = func(i int) {
			if sink.Closed() {
				return
			}
			if i == len(behaviors) {
				sink.Complete()
				return
			}
			inner := behaviors[i].Subscribe(sched, Observer[T]{
				Next:     sink.Next,
				Error:    sink.Error,
				Complete: func() { subscribeAt(i + 1) },
			})
			sink.Add(inner.Unsubscribe)
		}
		subscribeAt(0)
	})
}

// Map transforms each value of b with f.
func Map[T, U any](b Behavior[T], f func(T) U) Behavior[U] {
	return Func[U](func(sched clock.Scheduler, sink *Sink[U]) {
		inner := b.Subscribe(sched, Observer[T]{
			Next:     func(v T) { sink.Next(f(v)) },
			Error:    sink.Error,
			Complete: sink.Complete,
		})
		sink.Add(inner.Unsubscribe)
	})
}

// Untyped widens b to a Behavior[any], for handing to the event channel.
func Untyped[T any](b Behavior[T]) Behavior[any] {
	return Map(b, func(v T) any { return v })
}
