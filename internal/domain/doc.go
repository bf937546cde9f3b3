// Package domain holds the business entities of the system: projects,
// tasks, automation rules with their trigger and action specifications, and
// the events that connect them. It has no dependency on storage, transport,
// or any other infrastructure concern.
package domain
