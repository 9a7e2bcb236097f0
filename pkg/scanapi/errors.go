package scanapi

import "errors"

// Failure categories for one scan run. All of them are terminal: the tool
// never retries, it reports and exits. Callers match with errors.Is.
var (
	// ErrConnectivity covers unreachable hosts, refused connections and
	// non-success HTTP statuses outside the initiation call.
	ErrConnectivity = errors.New("scan API unreachable")

	// ErrInitiation means the backend rejected the scan request or did not
	// hand back a usable job identifier.
	ErrInitiation = errors.New("scan initiation failed")

	// ErrMalformedResponse means a payload could not be decoded or lacked
	// required fields.
	ErrMalformedResponse = errors.New("malformed scan API response")

	// ErrTimeout means the configured time budget elapsed before the scan
	// reached a terminal state.
	ErrTimeout = errors.New("scan timed out")

	// ErrStreamTerminated means the event stream closed before a completion
	// event arrived. Partial findings are discarded.
	ErrStreamTerminated = errors.New("scan stream terminated before completion")
)
