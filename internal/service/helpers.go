package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/org-admin/internal/events"
	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

// validID reports whether id can reference a stored row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// mapUnique rewrites a unique-constraint failure into a form-level message.
func mapUnique(err error, message string) error {
	de := apperrors.ToDomainError(err)
	if de != nil && de.Code == apperrors.CodeConflict {
		return apperrors.NewConflict(message, de.Details)
	}
	return de
}

func isCode(err error, code string) bool {
	var de *apperrors.DomainError
	return errors.As(err, &de) && de.Code == code
}

func requireAll(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// publish emits an event and logs handler failures; the write has already
// succeeded.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}
