// Package config loads and validates server settings from environment
// variables and an optional config file, including the automation engine's
// tunables (cascade depth, action timeout, due-date scan interval).
package config
