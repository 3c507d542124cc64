package main

// ExitCodeError wraps an error with a specific process exit code. Commands
// return plain errors for exit code 1; batch uses exitCodeIncorrect when a
// verifier rejects an answer.
type ExitCodeError struct {
	Code int
	Err  error
}

const exitCodeIncorrect = 2

func (e *ExitCodeError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
