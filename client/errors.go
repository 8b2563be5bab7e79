package client

import (
	"errors"
	"fmt"
)

var errNoEvent = errors.New("response carried no data event")

// HTTPError is returned for a non-200 bridge response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("bridge responded with %d: %s", e.StatusCode, e.Body)
}
