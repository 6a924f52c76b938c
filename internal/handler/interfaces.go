package handler

// Server defines the interface for long-running handlers.
// The REST API and the Telegram operator bot both implement it, so cmd
// binaries start and stop them the same way.
type Server interface {
	Start() error
	Stop() error
}
