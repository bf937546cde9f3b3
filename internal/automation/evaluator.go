package automation

import (
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Matches reports whether the given trigger matches the event. It is a pure
// function: no side effects, no I/O, no logging.
//
// Per trigger type:
//
//   - task_status_change: each condition field that is set must equal the
//     event's corresponding field; an unset field matches any value. A
//     condition with neither field set therefore matches every status
//     transition. That is deliberate, if sharp-edged: an empty condition is
//     the documented way to fire on every transition.
//
//   - task_assigned: an unassignment event (nil new assignee) never matches,
//     because the condition's user comparison would be undefined against a
//     missing identity. The rule is skipped rather than erroring. Otherwise
//     an unset condition user matches any assignee.
//
//   - due_date_passed: matches unconditionally; the caller decides when a
//     due date has passed.
//
// Only rules whose trigger type equals the event kind can match; the engine
// additionally filters on the active flag before calling this.
func Matches(trigger domain.TriggerSpec, event domain.Event) bool {
	if trigger.Type != event.Kind {
		return false
	}

	switch trigger.Type {
	case domain.TriggerTaskStatusChange:
		cond := trigger.StatusChange
		if cond == nil {
			return true
		}
		if cond.NewStatus != nil && *cond.NewStatus != event.NewStatus {
			return false
		}
		if cond.OldStatus != nil && *cond.OldStatus != event.OldStatus {
			return false
		}
		return true

	case domain.TriggerTaskAssigned:
		if event.NewAssignee == nil {
			// Fail closed on unassignment.
			return false
		}
		cond := trigger.Assigned
		if cond == nil || cond.UserID == nil {
			return true
		}
		return *cond.UserID == *event.NewAssignee

	case domain.TriggerDueDatePassed:
		return true
	}

	return false
}
