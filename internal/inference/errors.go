package inference

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork = errors.New("inference service unreachable")
	ErrService = errors.New("inference service error")
)

// NetworkError means the request never got a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// ServiceError is a response from the inference service that is not a success.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}
