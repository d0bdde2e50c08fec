package authcore

import (
	"context"

	"github.com/lingolab/authcore/internal/audit"
)

// Re-exported audit surface so embedders wire sinks without importing
// the internal package.
type (
	AuditEvent = audit.Event
	AuditSink  = audit.Sink
)

// Sink constructors for common destinations.
var (
	NewAuditChannelSink    = audit.NewChannelSink
	NewAuditJSONWriterSink = audit.NewJSONWriterSink
	NewAuditZapSink        = audit.NewZapSink
)

func (e *Engine) emit(ctx context.Context, event audit.Event) {
	if e.audit == nil {
		return
	}
	event.Timestamp = e.now()
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	e.audit.Emit(ctx, event)
}
