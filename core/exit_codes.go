package core

// Exit codes for the application.
// Every failure after argument resolution maps to ExitCodeError; callers get
// no finer distinction between error kinds.
const (
	// ExitCodeSuccess indicates the image was produced (exit code 0)
	ExitCodeSuccess = 0

	// ExitCodeError indicates model load, inference or save failed (exit code 1)
	ExitCodeError = 1
)

// ExitCodeFor maps a run result to the process exit code.
func ExitCodeFor(err error) int {
	if err != nil {
		return ExitCodeError
	}
	return ExitCodeSuccess
}

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	default:
		return "unknown"
	}
}
