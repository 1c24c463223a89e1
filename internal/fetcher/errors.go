package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// Fetch errors.
var (
	// ErrUnavailable is the terminal error when no data could be fetched and nothing is cached.
	ErrUnavailable = errors.New("data unavailable")
	// ErrMalformedPayload marks a body that is not JSON, fails validation or decodes to an empty value.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrBodyTooLarge is returned when a response body exceeds the source's size limit.
	ErrBodyTooLarge = errors.New("response body too large")
)

// HTTPStatusError is returned for non-2xx responses.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *HTTPStatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
