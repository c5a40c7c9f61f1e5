package worker

import (
	"github.com/spec-kit/org-admin/internal/service"
)

// StartAuditWorker registers audit handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
