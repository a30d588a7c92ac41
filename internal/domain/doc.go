// Package domain contains the core business entities, value objects, and
// domain logic of the task workflow: tasks, users, the action taxonomy,
// immutable history entries, and derived notifications. It represents the
// heart of the system, independent of any specific infrastructure or
// delivery mechanism.
package domain
