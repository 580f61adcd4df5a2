package queue

import "errors"

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The job fails immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

type waitError struct{ err error }

func (e *waitError) Error() string { return e.err.Error() }
func (e *waitError) Unwrap() error { return e.err }

// Wait marks err as an expected precondition miss. The job is retried with
// its normal backoff but the failure is logged at info level.
func Wait(err error) error {
	if err == nil {
		return nil
	}
	return &waitError{err: err}
}

// IsWait reports whether err was wrapped with Wait.
func IsWait(err error) bool {
	var w *waitError
	return errors.As(err, &w)
}
