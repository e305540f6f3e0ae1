package oli

import (
	"errors"
	"fmt"
)

// Sentinel errors for client operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConfiguration indicates a required identifier (flash method, DBS
	// file ID, inflows) was empty. Raised before any network call.
	ErrConfiguration = errors.New("missing required identifier")

	// ErrUnsupportedFlashMethod indicates a flash method outside the fixed
	// set the service accepts.
	ErrUnsupportedFlashMethod = errors.New("unsupported flash method")

	// ErrUnsupportedOption indicates a chemistry model option (phase,
	// thermodynamic framework, databank) outside the service allow-lists.
	ErrUnsupportedOption = errors.New("unsupported option")

	// ErrUnexpectedResponse indicates a 200 response whose body lacks the
	// expected status marker or result link.
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrPollTimeout indicates the poll attempt budget was exhausted
	// without a terminal result.
	ErrPollTimeout = errors.New("poll limit exceeded")
)

// RemoteError is returned when the service rejects an operation outright:
// a non-200 HTTP status, or a status marker outside the operation's accepted
// set. The raw body is kept for diagnosis.
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: remote failure (http %d): %s", e.Op, e.StatusCode, e.Body)
}
