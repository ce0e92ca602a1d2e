package audit

import (
	"context"

	logpkg "github.com/travisdw72/onevault-api-sub007/pkg/log"
)

// Sink receives change events. Implementations must tolerate concurrent
// calls; slow sinks are cut off by the bridge's timeout.
type Sink interface {
	Name() string
	Emit(ctx context.Context, ev ChangeEvent) error
}

// NoopSink discards every event. It is the default when auditing is not
// configured.
type NoopSink struct{}

// Name returns "noop".
func (NoopSink) Name() string { return "noop" }

// Emit discards the event.
func (NoopSink) Emit(context.Context, ChangeEvent) error { return nil }

// LogSink writes events to the structured logger.
type LogSink struct {
	Logger logpkg.Logger
}

// Name returns "log".
func (LogSink) Name() string { return "log" }

// Emit logs the event at info level.
func (s LogSink) Emit(_ context.Context, ev ChangeEvent) error {
	s.Logger.Info("change event",
		logpkg.Str("event_id", ev.ID),
		logpkg.Str("identity", ev.IdentityKey),
		logpkg.Str("entity_type", ev.EntityType),
		logpkg.Str("tenant", ev.TenantID),
		logpkg.Uint64("old_seq", ev.OldSeq),
		logpkg.Uint64("new_seq", ev.NewSeq),
		logpkg.Str("actor", ev.Actor),
	)
	return nil
}
