package model

import "gorm.io/datatypes"

const (
	EventLevelInfo  = "info"
	EventLevelWarn  = "warn"
	EventLevelError = "error"
)

// SystemEvent is a persisted operational log entry written by the curriculum pipeline.
// swagger:model SystemEvent
type SystemEvent struct {
	BaseModel
	Level         string            `gorm:"size:10;index;not null" json:"level"`
	Source        string            `gorm:"size:100;index" json:"source"`
	Message       string            `gorm:"type:text;not null" json:"message"`
	CorrelationID string            `gorm:"size:36" json:"correlationId"`
	Details       datatypes.JSONMap `json:"details"`
}

func (SystemEvent) TableName() string {
	return "system_events"
}
