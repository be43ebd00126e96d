package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder writes audit rows outside of the business transaction. Failures are
// logged and swallowed.
type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRecorder(db *gorm.DB, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{db: db, log: log}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.db == nil {
		return
	}

	row := Log{
		ActorID:      e.ActorID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Before:       r.marshal(e.Before, e.Action),
		After:        r.marshal(e.After, e.Action),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.log.Warn("audit_write_failed",
			zap.String("action", e.Action),
			zap.String("resource_type", e.ResourceType),
			zap.Int64("resource_id", e.ResourceID),
			zap.Error(err),
		)
	}
}

func (r *Recorder) marshal(v any, action string) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		r.log.Warn("audit_marshal_failed", zap.String("action", action), zap.Error(err))
		return nil
	}
	return datatypes.JSON(b)
}

func (r *Recorder) List(ctx context.Context, resourceType string, resourceID int64) ([]Log, error) {
	var rows []Log
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
