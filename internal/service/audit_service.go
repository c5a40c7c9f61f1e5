package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/events"
	"github.com/spec-kit/org-admin/internal/observability"
)

const defaultAuditHistory = 20

// AuditService records domain events: it logs them, counts them and keeps
// the most recent ones for the dashboard.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics

	mu      sync.RWMutex
	recent  []events.Event
	history int
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		history:    defaultAuditHistory,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("entity_id", event.EntityID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	a.metrics.RecordEvent(string(event.Type))

	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, event)
	if len(a.recent) > a.history {
		a.recent = a.recent[len(a.recent)-a.history:]
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (a *AuditService) Recent(limit int) []events.Event {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if limit <= 0 || limit > len(a.recent) {
		limit = len(a.recent)
	}
	out := make([]events.Event, 0, limit)
	for i := len(a.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.recent[i])
	}
	return out
}
