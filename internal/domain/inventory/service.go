package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nathanael250/travooz-hms-sub004/internal/domain/audit"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/metrics"
)

type StatusPublisher interface {
	PublishUnitStatus(ctx context.Context, ev UnitStatusEvent) error
}

type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type Service struct {
	db        *gorm.DB
	publisher StatusPublisher
	audit     AuditRecorder
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewService(db *gorm.DB, publisher StatusPublisher, rec AuditRecorder, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:        db,
		publisher: publisher,
		audit:     rec,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) ListUnits(ctx context.Context, f UnitFilter) ([]Unit, error) {
	if f.Status != nil && !f.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return NewRepository(s.db).ListUnits(ctx, f)
}

// SetUnitStatus applies a housekeeping change. Occupied is only entered and
// left through check-in and check-out.
func (s *Service) SetUnitStatus(ctx context.Context, unitID int64, to UnitStatus, actorID int64, reason string) (*Unit, error) {
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}

	var (
		unit *Unit
		from UnitStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		u, err := repo.LockUnit(ctx, unitID)
		if err != nil {
			return err
		}
		from = u.Status

		if from == to {
			unit = u
			return nil
		}
		if !from.CanHousekeepTo(to) {
			return fmt.Errorf("%w: %s -> %s", ErrStatusChangeForbidden, from, to)
		}

		if err := repo.UpdateStatus(ctx, u.ID, to); err != nil {
			return err
		}
		u.Status = to
		unit = u
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnitNotFound) || errors.Is(err, ErrStatusChangeForbidden) {
			return nil, err
		}
		return nil, fmt.Errorf("set unit status: %w", err)
	}

	if from != to {
		s.afterStatusChange(ctx, unit, from, actorID, reason)
	}
	return unit, nil
}

func (s *Service) afterStatusChange(ctx context.Context, u *Unit, from UnitStatus, actorID int64, reason string) {
	s.metrics.UnitStatusChanged(string(u.Status))

	if s.publisher != nil {
		ev := NewStatusEvent(u, from, reason, s.now())
		if err := s.publisher.PublishUnitStatus(ctx, ev); err != nil {
			s.log.Warn("unit_status_publish_failed", zap.Int64("unit_id", u.ID), zap.Error(err))
		}
	}
	if s.audit != nil {
		s.audit.Record(ctx, audit.Entry{
			ActorID:      actorID,
			Action:       "unit.status_changed",
			ResourceType: "room_unit",
			ResourceID:   u.ID,
			Before:       map[string]any{"status": from},
			After:        map[string]any{"status": u.Status, "reason": reason},
		})
	}
}
