// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
// 1. ActivityService:
//   - The generic event-recording surface: append a history entry, then
//     publish it so notification fan-out can run
//   - History queries scoped by task or by actor
//
// 2. TaskService:
//   - Task lifecycle operations (create, status, stage, assign, transfer,
//     priority and deadline updates)
//   - Commits the task mutation and its history entry in one transaction,
//     then publishes the recorded entry
//
// 3. NotificationService:
//   - Per-user notification reads (paginated listing, unread count)
//   - Read/unread transitions with ownership enforcement
//
// 4. Error Handling:
//   - Sentinel errors for expected conditions, checked with errors.Is
//   - Unexpected errors wrapped in service-specific error types carrying
//     the failed operation
//
// The service layer depends on domain entities and store interfaces, never
// on specific infrastructure implementations.
package service
