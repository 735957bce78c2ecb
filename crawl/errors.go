package crawl

import "errors"

// ErrInvalidBaseURL is returned when the run's base URL has no scheme or host.
var ErrInvalidBaseURL = errors.New("crawl: invalid base URL")
