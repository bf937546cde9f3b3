// Package main implements the entry point for the Taskboard API server,
// which manages projects and tasks and runs the automation rule engine
// that reacts to task events.
package main

import (
	"log"
)

// main wires configuration, the database, the automation engine and the
// HTTP server together, then blocks until shutdown.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
