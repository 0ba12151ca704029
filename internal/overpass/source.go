// Package overpass fetches the raw points of one tile from an Overpass API
// interpreter.
package overpass

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ladepause/ladepause/internal/geo"
	"github.com/ladepause/ladepause/internal/model"
)

var (
	// ErrUnexpectedStatus wraps every non-2xx interpreter response
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMalformedResponse is returned for bodies that are not an Overpass JSON result
	ErrMalformedResponse = errors.New("malformed response")
	// ErrQueryRemark is returned when the interpreter aborted the query (e.g. timeout, out of memory)
	ErrQueryRemark = errors.New("query aborted by interpreter")
)

// Source returns the raw points of one tile
type Source interface {
	FetchTile(ctx context.Context, tile geo.Tile) ([]model.RawPoint, error)
}

// StatusError carries the HTTP status of a failed request
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Is makes errors.Is(err, ErrUnexpectedStatus) work
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Retryable reports whether the status indicates a transient failure
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || (e.Code >= 500 && e.Code < 600)
}
