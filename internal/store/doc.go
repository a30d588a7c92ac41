// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the notification derivation logic, allowing the recipient, rendering,
// and reminder rules to remain independent of the database technology.
package store
