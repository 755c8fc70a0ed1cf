package output

import "github.com/currentlycurrently/acidtest/model"

// ExitCode is the standalone runner's process exit code.
type ExitCode int

const (
	// ExitOK indicates PASS or WARN.
	ExitOK ExitCode = 0
	// ExitFail indicates FAIL or DANGER, or an unrecoverable input error.
	ExitFail ExitCode = 1
)

// DetermineExitCode implements spec §6's exit-code contract: 0 on PASS
// or WARN, 1 on FAIL or DANGER, and 1 on an unrecoverable error
// (hadError, e.g. acidterr.InputError) regardless of status.
func DetermineExitCode(status model.StatusBand, hadError bool) ExitCode {
	if hadError {
		return ExitFail
	}
	switch status {
	case model.StatusPass, model.StatusWarn:
		return ExitOK
	default:
		return ExitFail
	}
}
