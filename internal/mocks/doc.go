// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of the store interfaces used
// throughout the application, facilitating consistent and DRY testing across
// the codebase. Instead of defining inline mocks in individual test files,
// these standardized mock implementations can be reused.
//
// Every mock follows the same pattern: a struct with an overridable
// function field per interface method, plus an in-memory default
// implementation backing the common cases. Tests that only need "a store
// that remembers things" use the defaults; tests probing failure paths set
// the matching ...Fn field.
//
// Usage:
//
//	import "github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    taskStore := mocks.NewMockTaskStore()
//	    taskStore.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
//	        return nil, store.ErrTaskNotFound
//	    }
//
//	    // Use the mock in your test...
//	}
package mocks
