package fetcher

import (
	"errors"
	"fmt"
)

// HTTPError is returned when the source site answers with a non-2xx status
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d fetching %s", e.Status, e.URL)
}

// NetworkError is returned on timeout or connection failure before any HTTP
// status was received
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether a fetch error is not worth retrying: client
// errors other than timeout/rate-limit are permanent for that item.
func IsPermanent(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 400 && httpErr.Status < 500 &&
			httpErr.Status != 408 && httpErr.Status != 429
	}
	return false
}
