// Package events re-exports the platform event bus and defines the domain
// events exchanged between modules.
package events

import (
	platformevents "guardops_backend/platform/events"
	"guardops_backend/platform/logger"
)

// Bus is a type alias to the platform event bus interface.
type Bus = platformevents.Bus

// Event is a type alias to the platform event interface.
type Event = platformevents.Event

// BaseEvent is a type alias to the platform base event.
type BaseEvent = platformevents.BaseEvent

// Handler is a type alias to the platform event handler.
type Handler = platformevents.Handler

// HandlerFunc is a type alias to the platform handler adapter.
type HandlerFunc = platformevents.HandlerFunc

// InMemoryBus is a type alias to the platform in-memory bus.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates an in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}
