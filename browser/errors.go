package browser

import "errors"

// ErrNoBrowser is returned when a page is requested before Start.
var ErrNoBrowser = errors.New("browser: no active browser")
