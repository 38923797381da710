package main

import "errors"

// Exit codes returned by pdfrag commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable config, unknown backend)
	ExitDataError   = 3 // At least one document failed to ingest
	ExitNotReady    = 4 // Models or store could not be initialized
)

// codedError carries the exit code for an error returned from RunE.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

func exitCode(err error) int {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return ExitError
}
