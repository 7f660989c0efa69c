package availability

import "errors"

// ErrFetchFailed wraps a catalog query failure. Handlers render it as an
// empty result but log it apart from a genuinely empty day.
var ErrFetchFailed = errors.New("availability fetch failed")
