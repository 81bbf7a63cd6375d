package logger

// Console implements a console based logger. Console output always goes to
// stderr, stdout is kept for command results.
type Console struct {
	Enabled          bool `toml:"enabled"`
	UseConsoleWriter bool `toml:"useConsoleWriter"`
}

// RollingFile configures one lumberjack rotated file.
type RollingFile struct {
	Name       string `toml:"name"`
	MaxSize    int    `toml:"maxSize"` // megabytes
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"` // days
}

// LogFile implements a file based logger split by level.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	Error RollingFile `toml:"error"`
	Warn  RollingFile `toml:"warn"`
	Info  RollingFile `toml:"info"`
	Trace RollingFile `toml:"trace"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string `toml:"logLevel"` // trace, debug, info, warn, error.

	ReportCaller bool `toml:"reportCaller"`

	AppName     string `toml:"appName"`
	ServiceName string `toml:"serviceName"`

	// QueryLog traces every database statement at debug level.
	QueryLog bool `toml:"queryLog"`

	Console Console `toml:"console"`

	File LogFile `toml:"file"`
}
