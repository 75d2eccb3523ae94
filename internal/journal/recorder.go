package journal

import (
	"context"
	"fmt"

	"github.com/zjrosen/treelights/internal/channel"
	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/pubsub"
)

// Recorder appends channel events received from a broker subscription to a
// journal session.
type Recorder struct {
	session *Session
	written int
	failed  int
}

// NewRecorder records into session.
func NewRecorder(session *Session) *Recorder {
	return &Recorder{session: session}
}

// Run consumes events until ctx is done or the subscription closes. Append
// failures are logged and counted, never fatal.
func (r *Recorder) Run(ctx context.Context, events <-chan pubsub.Event[channel.Event]) {
	defer r.session.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.record(ctx, ev)
		}
	}
}

func (r *Recorder) record(ctx context.Context, ev pubsub.Event[channel.Event]) {
	err := r.session.Append(ctx, string(ev.Payload.Type), PayloadText(ev.Payload.Payload), ev.Timestamp)
	if err != nil {
		r.failed++
		log.ErrorErr(log.CatJournal, "Failed to record event", err, "type", ev.Payload.Type)
		return
	}
	r.written++
}

// Counts returns how many events were written and how many failed.
func (r *Recorder) Counts() (written, failed int) {
	return r.written, r.failed
}

// PayloadText renders an event payload for storage.
func PayloadText(payload any) string {
	switch p := payload.(type) {
	case nil:
		return ""
	case error:
		return p.Error()
	case fmt.Stringer:
		return p.String()
	case string:
		return p
	default:
		return fmt.Sprintf("%v", p)
	}
}
