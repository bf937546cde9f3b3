package events

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Handler defines an interface for components that can consume task events.
// Handlers are responsible for processing events and taking appropriate
// actions; the automation dispatch engine is the primary handler.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event domain.Event) error
}

// Emitter defines an interface for components that can emit task events.
// This allows the task-mutation surface to publish state changes without
// direct knowledge of the automation engine.
type Emitter interface {
	// Emit publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	Emit(ctx context.Context, event domain.Event) error
}
