// Package service provides application-level services: automation rule
// management with project-scoped authorization, and task mutation that
// raises the events the dispatch engine consumes.
package service
