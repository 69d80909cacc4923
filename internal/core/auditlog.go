package core

import (
	"context"

	"github.com/illarion/vlt/internal/audit"
)

// AuditLogResult holds the events selected from an audit log
type AuditLogResult struct {
	Events []audit.Event
	Total  int // Events in the log before filtering
}

// ReadAuditLog reads the audit log at path and applies f. A log that does
// not exist yet has no events.
func ReadAuditLog(ctx context.Context, path string, f audit.Filter) (*AuditLogResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	events, err := audit.ReadEvents(path)
	if err != nil {
		return nil, err
	}
	return &AuditLogResult{Events: f.Apply(events), Total: len(events)}, nil
}
