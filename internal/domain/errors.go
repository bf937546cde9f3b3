// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Specific validation errors wrap this sentinel so callers can match
	// the whole family with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// Rule-specific validation errors. All wrap ErrValidation.
var (
	// ErrRuleNameEmpty is returned when a rule's name is empty.
	ErrRuleNameEmpty = fmt.Errorf("%w: rule name cannot be empty", ErrValidation)

	// ErrRuleProjectIDEmpty is returned when a rule's project ID is nil.
	ErrRuleProjectIDEmpty = fmt.Errorf("%w: rule project ID cannot be empty", ErrValidation)

	// ErrRuleCreatorEmpty is returned when a rule's creator reference is nil.
	ErrRuleCreatorEmpty = fmt.Errorf("%w: rule creator cannot be empty", ErrValidation)

	// ErrInvalidTriggerType is returned when a trigger type is not one of
	// the closed set of known trigger types.
	ErrInvalidTriggerType = fmt.Errorf("%w: invalid trigger type", ErrValidation)

	// ErrInvalidTriggerCondition is returned when a trigger condition
	// document is malformed for its trigger type.
	ErrInvalidTriggerCondition = fmt.Errorf("%w: invalid trigger condition", ErrValidation)

	// ErrInvalidActionType is returned when an action type is not one of
	// the closed set of known action types.
	ErrInvalidActionType = fmt.Errorf("%w: invalid action type", ErrValidation)

	// ErrInvalidActionData is returned when an action data document is
	// malformed or missing required fields for its action type.
	ErrInvalidActionData = fmt.Errorf("%w: invalid action data", ErrValidation)
)

// Task-specific validation errors.
var (
	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = fmt.Errorf("%w: task title cannot be empty", ErrValidation)

	// ErrTaskStatusEmpty is returned when a task's status is empty.
	ErrTaskStatusEmpty = fmt.Errorf("%w: task status cannot be empty", ErrValidation)

	// ErrTaskProjectIDEmpty is returned when a task's project ID is nil.
	ErrTaskProjectIDEmpty = fmt.Errorf("%w: task project ID cannot be empty", ErrValidation)
)
