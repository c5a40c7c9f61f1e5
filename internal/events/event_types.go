package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered    EventType = "user_registered"
	EventUserLoggedIn      EventType = "user_logged_in"
	EventPasswordChanged   EventType = "password_changed"
	EventDepartmentCreated EventType = "department_created"
	EventDepartmentUpdated EventType = "department_updated"
	EventDepartmentDeleted EventType = "department_deleted"
	EventEmployeeCreated   EventType = "employee_created"
	EventEmployeeUpdated   EventType = "employee_updated"
	EventEmployeeDeleted   EventType = "employee_deleted"
)

// AllEventTypes lists every type services may publish.
var AllEventTypes = []EventType{
	EventUserRegistered,
	EventUserLoggedIn,
	EventPasswordChanged,
	EventDepartmentCreated,
	EventDepartmentUpdated,
	EventDepartmentDeleted,
	EventEmployeeCreated,
	EventEmployeeUpdated,
	EventEmployeeDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType EventType, entityID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// NamePayload carries the display name of the affected record.
type NamePayload struct {
	Name string `json:"name"`
}

// EmployeePayload payload.
type EmployeePayload struct {
	Name         string  `json:"name"`
	DepartmentID string  `json:"department_id"`
	SupervisorID *string `json:"supervisor_id,omitempty"`
}
