package shipments

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	errMissingSource   = errors.New("shipments: record source not configured")
	errMissingWriter   = errors.New("shipments: assignment writer not configured")
	errMissingAWB      = errors.New("shipments: awb number is required")
	ErrUnknownAssignee = errors.New("shipments: unknown assignee")
	ErrNoIdentity      = errors.New("shipments: viewer has no recognised role")
	ErrNotVisible      = errors.New("shipments: shipment is not on the viewer's board")
)

// NetworkErrorMessage is shown when a request was sent but never answered.
const NetworkErrorMessage = "Network error. Please check your connection."

// RemoteError is an HTTP error response from a sheet endpoint.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote error %d", e.StatusCode)
}

// TransportError marks a request that was sent but got no response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "no response: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// FetchErrorKind is the failure class of a fetch.
type FetchErrorKind int

const (
	// FetchErrorLocal is a failure before a request could be sent or after a
	// response could not be read.
	FetchErrorLocal FetchErrorKind = iota
	// FetchErrorResponse is an HTTP error response.
	FetchErrorResponse
	// FetchErrorNetwork is a request without a response.
	FetchErrorNetwork
)

// FetchError is a classified fetch failure with a user-facing message.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

// ClassifyFetchError wraps err with its failure class.
func ClassifyFetchError(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return &FetchError{Kind: FetchErrorResponse, StatusCode: remote.StatusCode, Err: err}
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return &FetchError{Kind: FetchErrorNetwork, Err: err}
	}
	return &FetchError{Kind: FetchErrorLocal, Err: err}
}

func (e *FetchError) Error() string {
	return "shipments: fetch failed: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Display renders the message shown on the board.
func (e *FetchError) Display() string {
	switch e.Kind {
	case FetchErrorResponse:
		message := ""
		var remote *RemoteError
		if errors.As(e.Err, &remote) {
			message = remote.Message
		}
		if message == "" {
			message = fmt.Sprintf("Request failed with status code %d", e.StatusCode)
			if text := http.StatusText(e.StatusCode); text != "" {
				message = fmt.Sprintf("%s (%s)", message, text)
			}
		}
		return fmt.Sprintf("Error %d: %s", e.StatusCode, message)
	case FetchErrorNetwork:
		return NetworkErrorMessage
	default:
		return "Error: " + e.Err.Error()
	}
}

// IsRateLimited reports whether err is an HTTP 429 response.
func IsRateLimited(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.StatusCode == http.StatusTooManyRequests
}

// AssignmentFailedError carries an assignment that did not persist.
type AssignmentFailedError struct {
	Result AssignResult
}

func (e *AssignmentFailedError) Error() string {
	return fmt.Sprintf("shipments: assign %s to %s failed after %d attempt(s): %v",
		e.Result.AWBNumber, e.Result.Person, e.Result.Attempts, e.Result.Err)
}

func (e *AssignmentFailedError) Unwrap() error { return e.Result.Err }
