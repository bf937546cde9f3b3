// Package automation implements the rule engine that reacts to task state
// changes. Project owners define rules of the form "when event E occurs and
// condition C holds, perform action A"; this package evaluates and executes
// those rules as events arrive.
//
// The package is organized around four pieces:
//   - Evaluator (evaluator.go): pure condition matching, no side effects
//   - Executor (executor.go): performs a matched rule's action against
//     external collaborator interfaces
//   - Engine (engine.go): orchestrates load/match/execute per event and
//     enforces the cascade-depth and duplicate-firing guards
//   - Scanner (duedate.go): raises due_date_passed events for overdue tasks
//
// Rules are read-only from this package's perspective; only the owner-facing
// CRUD surface mutates them.
package automation
