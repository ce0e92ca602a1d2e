package audit

import (
	"context"
	"fmt"
	"time"

	logpkg "github.com/travisdw72/onevault-api-sub007/pkg/log"
)

// DefaultTimeout bounds a single sink emit when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// Bridge publishes change events to a sink on a best-effort basis. Sink
// errors, panics, and timeouts are logged and absorbed: the primary write has
// already committed by the time Notify runs, and nothing here may undo or
// fail it.
type Bridge struct {
	sink    Sink
	logger  logpkg.Logger
	timeout time.Duration
}

// NewBridge wires a sink behind the given timeout. A nil sink falls back to
// NoopSink.
func NewBridge(sink Sink, logger logpkg.Logger, timeout time.Duration) *Bridge {
	if sink == nil {
		sink = NoopSink{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bridge{sink: sink, logger: logger, timeout: timeout}
}

// SinkName reports the configured sink.
func (b *Bridge) SinkName() string { return b.sink.Name() }

// Notify delivers ev to the sink. It never returns an error and never blocks
// longer than the configured timeout.
func (b *Bridge) Notify(ctx context.Context, ev ChangeEvent) {
	// The event outlives the caller's deadline: the write it describes has
	// already committed, so delivery gets its own bounded context.
	emitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	err := b.emit(emitCtx, ev)
	if err != nil {
		b.logger.Warn("audit sink failed; event dropped",
			logpkg.Str("sink", b.sink.Name()),
			logpkg.Str("event_id", ev.ID),
			logpkg.Str("identity", ev.IdentityKey),
			logpkg.Str("entity_type", ev.EntityType),
			logpkg.Str("tenant", ev.TenantID),
			logpkg.Uint64("new_seq", ev.NewSeq),
			logpkg.Err(err),
		)
	}
}

func (b *Bridge) emit(ctx context.Context, ev ChangeEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit: sink panic: %v", r)
		}
	}()
	return b.sink.Emit(ctx, ev)
}
