// ABOUTME: Error taxonomy surfaced by restore and reconcile.
// ABOUTME: Build, fetch and commit failures share one wrapping type.
package restore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means no session exists for the requested user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoDataFound means the cloud holds no profile for the user.
	ErrNoDataFound = errors.New("no cloud data found")
	// ErrRestorationFailed matches every *RestorationFailedError.
	ErrRestorationFailed = errors.New("restoration failed")
)

// RestorationFailedError reports which stage of a restore failed.
type RestorationFailedError struct {
	Detail string
	Err    error
}

func (e *RestorationFailedError) Error() string {
	return fmt.Sprintf("restoration failed: %s: %v", e.Detail, e.Err)
}

func (e *RestorationFailedError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRestorationFailed) match.
func (e *RestorationFailedError) Is(target error) bool {
	return target == ErrRestorationFailed
}

func failed(detail string, err error) error {
	return &RestorationFailedError{Detail: detail, Err: err}
}
