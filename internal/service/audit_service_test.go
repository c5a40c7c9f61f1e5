package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/org-admin/internal/events"
	"github.com/spec-kit/org-admin/internal/observability"
)

func TestAuditService_RecentNewestFirstAndCapped(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	audit := NewAuditService(dispatcher, nil, observability.NewMetrics(prometheus.NewRegistry()))
	audit.RegisterHandlers()

	ctx := context.Background()
	for i := 0; i < defaultAuditHistory+5; i++ {
		require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventEmployeeCreated, fmt.Sprintf("emp-%d", i), testActor, nil)))
	}

	recent := audit.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, fmt.Sprintf("emp-%d", defaultAuditHistory+4), recent[0].EntityID)
	assert.Equal(t, fmt.Sprintf("emp-%d", defaultAuditHistory+2), recent[2].EntityID)
	assert.Len(t, audit.Recent(0), defaultAuditHistory)
}

func TestDashboardService_Stats(t *testing.T) {
	f := newFixture(t)
	audit := NewAuditService(f.dispatcher, nil, nil)
	audit.RegisterHandlers()
	dashboard := NewDashboardService(f.departments, f.employees, audit)

	dept := f.department(t, "Engineering")
	f.employee(t, "Ada", "Lovelace", dept.ID, "")

	stats, err := dashboard.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Departments)
	assert.Equal(t, int64(1), stats.Employees)
	require.Len(t, stats.Recent, 2)
	assert.Equal(t, events.EventEmployeeCreated, stats.Recent[0].Type)
	assert.Equal(t, events.EventDepartmentCreated, stats.Recent[1].Type)
}
