package service

import (
	"context"

	"spanish_learning_backend/internal/model"
	"spanish_learning_backend/internal/repository"
	"spanish_learning_backend/pkg/logger"

	"go.uber.org/zap"
)

// EventRecorder persists operational events raised by the curriculum pipeline.
type EventRecorder interface {
	Record(ctx context.Context, level, source, message string, details map[string]interface{})
}

type SystemEventService struct {
	repo *repository.SystemEventRepository
}

func NewSystemEventService(repo *repository.SystemEventRepository) *SystemEventService {
	return &SystemEventService{repo: repo}
}

// Record stores the event and mirrors it to the process log. A failure to
// store is logged and swallowed so it never replaces the error being reported.
func (s *SystemEventService) Record(ctx context.Context, level, source, message string, details map[string]interface{}) {
	event := &model.SystemEvent{
		Level:         level,
		Source:        source,
		Message:       message,
		CorrelationID: model.NewCorrelationID(),
		Details:       details,
	}

	fields := []zap.Field{
		zap.String("source", source),
		zap.String("correlation_id", event.CorrelationID),
		zap.Any("details", details),
	}
	switch level {
	case model.EventLevelError:
		logger.Log.Error(message, fields...)
	case model.EventLevelWarn:
		logger.Log.Warn(message, fields...)
	default:
		logger.Log.Info(message, fields...)
	}

	if s == nil || s.repo == nil {
		return
	}
	// Store even if the request that raised the event was cancelled.
	if err := s.repo.Create(context.WithoutCancel(ctx), event); err != nil {
		logger.Log.Error("Failed to persist system event",
			zap.String("source", source),
			zap.String("message", message),
			zap.Error(err),
		)
	}
}

func (s *SystemEventService) ListRecent(ctx context.Context, level string, limit int) ([]model.SystemEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, level, limit)
}
