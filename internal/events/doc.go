// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose
// coupling between components in the system. The application service emits a
// task request event when an application is accepted; the task layer registers
// a handler that turns the event into a queued processing task. Neither side
// imports the other, which keeps the submission path free of worker concerns.
//
// The primary components are:
//   - TaskRequestEvent: Represents a request to create a background task
//   - EventHandler: Interface for components that can handle events
//   - EventEmitter: Interface for components that can emit events
package events
