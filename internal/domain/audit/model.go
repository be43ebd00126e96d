package audit

import (
	"time"

	"gorm.io/datatypes"
)

// Log is one append-only audit row.
type Log struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	ActorID      int64          `gorm:"index" json:"actor_id"`
	Action       string         `gorm:"size:64;not null;index" json:"action"`
	ResourceType string         `gorm:"size:32;not null;index:idx_audit_resource" json:"resource_type"`
	ResourceID   int64          `gorm:"not null;index:idx_audit_resource" json:"resource_id"`
	Before       datatypes.JSON `json:"before,omitempty"`
	After        datatypes.JSON `json:"after,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}

func (Log) TableName() string { return "audit_logs" }

// Entry is what callers hand to the recorder; Before and After are marshaled
// to JSON as-is.
type Entry struct {
	ActorID      int64
	Action       string
	ResourceType string
	ResourceID   int64
	Before       any
	After        any
}
