package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Automation AutomationConfig `mapstructure:"automation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication settings. Only bearer-token
// verification is configured here; token issuance happens elsewhere.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// AutomationConfig contains the dispatch engine's tuning knobs.
type AutomationConfig struct {
	// MaxCascadeDepth bounds how many times rule actions may chain new
	// events within one causal chain before the engine truncates it.
	MaxCascadeDepth int `mapstructure:"max_cascade_depth" validate:"required,gt=0,lte=25"`

	// ActionTimeout bounds each action executor invocation.
	ActionTimeout time.Duration `mapstructure:"action_timeout" validate:"required"`

	// DueDateScanInterval is how often the due-date scanner looks for
	// overdue tasks. Zero disables the scanner.
	DueDateScanInterval time.Duration `mapstructure:"due_date_scan_interval"`
}
