package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrConnectionExpired = errors.New("connection expired")
	ErrLoadInProgress    = errors.New("a load is already in progress")
	ErrMockError         = errors.New("mock error")
	ErrNotFound          = errors.New("not found")
	ErrStaleResponse     = errors.New("stale response discarded")
)

// APIError is returned for upstream responses with an error status code
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404 from upstream
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
