package config

import (
	"time"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/logger"
)

// Config overall data structure.
type Config struct {
	Log     logger.Log
	DB      DB
	Auth    Auth
	Metrics Metrics
}

// Auth holds the defaults applied to every session before the command line
// arguments.
type Auth struct {
	// Driver selects the database dialect.
	Driver string `validate:"required,oneof=mysql postgres sqlite"`

	// Args are option arguments such as "table=users".
	Args []string

	// ConfigFile is passed as the config_file option when set.
	ConfigFile string `validate:"omitempty,filepath"`

	// AllowNullPassword lets a NULL stored password match any input.
	AllowNullPassword bool

	// QueryTimeout bounds every query, e.g. "5s". Zero disables it.
	QueryTimeout time.Duration `validate:"gte=0"`
}

// Metrics controls the prometheus text file written after every command.
type Metrics struct {
	// TextFile is a node exporter textfile collector path. Empty disables it.
	TextFile string `validate:"omitempty,filepath"`
}
