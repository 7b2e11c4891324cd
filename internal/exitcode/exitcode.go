// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown id, nothing to undo).
	UserError = 1

	// ConfigError indicates a configuration or construction failure
	// (bad settings, unreachable backend), distinct from runtime failures
	// so callers can fall back to another backend.
	ConfigError = 2

	// BackendError indicates a storage operation failure.
	BackendError = 3
)
