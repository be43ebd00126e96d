package booking

import (
	"context"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/inventory"
)

// StatusPublisher receives unit status changes after commit.
type StatusPublisher interface {
	PublishUnitStatus(ctx context.Context, ev inventory.UnitStatusEvent) error
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}
