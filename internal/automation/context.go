package automation

import (
	"github.com/google/uuid"
)

// ExecutionContext is the per-chain bookkeeping that bounds cascades: a
// depth counter plus the set of rules that already fired within one causal
// chain. A fresh context is created for each externally-originated event and
// is owned by exactly one in-flight dispatch at a time; it is never shared
// across concurrent chains.
type ExecutionContext struct {
	// Depth is how many cascade levels deep this dispatch is. The
	// externally-originated event starts at zero.
	Depth int

	// fired is shared across the whole chain (parent and cascaded
	// dispatches alike) so a rule fires at most once per chain.
	fired map[uuid.UUID]struct{}
}

// NewExecutionContext returns a fresh context for an externally-originated
// event: depth zero, empty fired set.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		fired: make(map[uuid.UUID]struct{}),
	}
}

// Child returns the context for a cascaded event: depth incremented, fired
// set shared with the parent. Chains are serialized per project, so sharing
// the set is safe.
func (c *ExecutionContext) Child() *ExecutionContext {
	return &ExecutionContext{
		Depth: c.Depth + 1,
		fired: c.fired,
	}
}

// HasFired reports whether the given rule already fired within this chain.
func (c *ExecutionContext) HasFired(ruleID uuid.UUID) bool {
	_, ok := c.fired[ruleID]
	return ok
}

// MarkFired records that the given rule fired within this chain.
func (c *ExecutionContext) MarkFired(ruleID uuid.UUID) {
	c.fired[ruleID] = struct{}{}
}
