package tracing

// Span names.
const (
	SpanAdvance        = "toggler.advance"
	SpanBehaviorFailed = "toggler.behavior_failed"
)

// Span attribute keys.
const (
	AttrModeFrom = "mode.from"
	AttrModeTo   = "mode.to"
	AttrMode     = "mode"
)
