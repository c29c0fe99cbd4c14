package service

import "github.com/google/uuid"

// Scope is the caller's capability, resolved by the auth middleware and
// passed explicitly into every service operation. Services trust it and
// never reach back into the request for identity.
type Scope struct {
	CompanyID uuid.UUID
	UserID    uuid.UUID
	Role      string
}

// EventPublisher pushes domain events to connected clients. Implemented by
// the websocket hub; a no-op fake stands in during tests.
type EventPublisher interface {
	Publish(event string, data map[string]interface{})
}
