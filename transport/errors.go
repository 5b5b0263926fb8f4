package transport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/surveykit/surveykit/models"
)

// TransportError is returned when a request never produced an HTTP response,
// e.g. because the connection failed. It is never retried internally.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %v failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is returned when the server responds with a non-success status
// code and the body carries no interpretable error structure
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server errored w/HTTP code %v", e.Status)
}

// APIError is returned when the service responded successfully at the HTTP
// layer but reported an application-level failure. It carries the one or more
// code/text pairs from the response's errors array
type APIError struct {
	Details []models.ErrorDetail

	wrapped *multierror.Error
}

// NewAPIError returns an APIError for the given error details
func NewAPIError(details []models.ErrorDetail) *APIError {
	var wrapped *multierror.Error
	for _, d := range details {
		wrapped = multierror.Append(wrapped, fmt.Errorf("%v (code: %v)", d.Text, d.Code))
	}

	return &APIError{
		Details: details,
		wrapped: wrapped,
	}
}

func (e *APIError) Error() string {
	descriptions := make([]string, 0)
	for _, d := range e.Details {
		descriptions = append(descriptions, fmt.Sprintf("%v (code: %v)", d.Text, d.Code))
	}

	return fmt.Sprintf("api error: %v", strings.Join(descriptions, ","))
}

func (e *APIError) Unwrap() error {
	return e.wrapped
}

// Codes returns the error codes that caused this error as integers, so that
// callers can branch on well-known codes (e.g. 200 for invalid credentials).
// Codes that don't parse as integers are skipped
func (e *APIError) Codes() []int {
	codes := make([]int, 0)
	for _, d := range e.Details {
		code, err := strconv.Atoi(d.Code)
		if err != nil {
			continue
		}

		codes = append(codes, code)
	}

	return codes
}
