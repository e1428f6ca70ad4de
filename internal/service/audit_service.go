package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/sso-gateway/internal/events"
	"github.com/spec-kit/sso-gateway/internal/observability"
)

// AuditService consumes auth events and turns them into operator-visible
// logs and counters.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService builds the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger, metrics: metrics}
}

// RegisterHandlers subscribes the audit sink to all auth event types.
func (s *AuditService) RegisterHandlers() {
	s.dispatcher.Subscribe(events.EventSessionIssued, s.record)
	s.dispatcher.Subscribe(events.EventCallbackRejected, s.record)
	s.dispatcher.Subscribe(events.EventAuthorizationDenied, s.record)
}

func (s *AuditService) record(_ context.Context, event events.Event) error {
	s.metrics.RecordAuthEvent(string(event.Type))

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", event.SubjectID))
	}
	if event.Role != "" {
		fields = append(fields, zap.String("role", string(event.Role)))
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}

	if event.Type == events.EventSessionIssued {
		s.logger.Info("auth event", fields...)
	} else {
		s.logger.Warn("auth event", fields...)
	}
	return nil
}
