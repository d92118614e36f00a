package aiusage

import "errors"

// ErrQuotaExceeded is returned when a client has no generations remaining for the current month.
var ErrQuotaExceeded = errors.New("monthly generation quota exceeded")

// DefaultGenerations is the monthly allowance when none is configured.
const DefaultGenerations = 100

// Unmetered is the remaining count reported for requests without a client id.
const Unmetered = -1
