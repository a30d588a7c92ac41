// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose coupling
// between components in the system. Services can emit events without knowing which
// handlers will process them, enabling better separation of concerns and reducing
// circular dependencies.
//
// The primary components are:
// - ActivityEvent: Carries a recorded history entry reference to interested handlers
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
//
// The one event flow in this system is history_recorded: the activity service
// emits it after committing a history entry, and the notification fan-out
// handler consumes it to derive per-recipient notifications.
package events
