package docker

import (
	"errors"
	"fmt"

	"github.com/melih/lighthouse-jobs/internal/core/domain"
)

var (
	ErrContainerNotFound      = fmt.Errorf("container %w", domain.ErrNotFound)
	ErrContainerAlreadyExists = fmt.Errorf("container %w", domain.ErrAlreadyExists)
	ErrPortAlreadyAllocated   = errors.New("port is already allocated")
	ErrImagePullFailed        = errors.New("image pull failed")
	ErrConnectionFailed       = errors.New("docker connection failed")
)

// Error wraps a failed Docker call with the operation and container name.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, name string, err error) *Error {
	return &Error{Op: op, Name: name, Err: err}
}
