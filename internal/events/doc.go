// Package events provides the boundary between task mutations and the
// automation engine.
//
// The task-mutation surface emits typed domain events without knowing which
// handlers will process them; the dispatch engine registers as a handler.
// This keeps the two decoupled and makes the dispatch boundary testable in
// isolation.
//
// The primary components are:
// - Handler: Interface for components that consume task events
// - Emitter: Interface for components that emit task events
// - InMemoryEmitter: Synchronous in-process Emitter implementation
package events
