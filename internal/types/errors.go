package types

import "errors"

var (
	// ErrSelectionMiss indicates a named resolver spec was not found in the store.
	ErrSelectionMiss = errors.New("resolver spec not found")

	// ErrNetwork indicates a transport failure or an unexpected status code.
	ErrNetwork = errors.New("network failure")

	// ErrMalformedResponse indicates a resolver body that is not a JSON object or lacks a url.
	ErrMalformedResponse = errors.New("malformed resolver response")

	// ErrEmptyAggregate indicates no resolver spec matched an aggregate flag.
	ErrEmptyAggregate = errors.New("no resolvers matched aggregate flag")

	// ErrDeadline indicates the global job deadline elapsed.
	ErrDeadline = errors.New("resolution deadline exceeded")

	// ErrJobStopped indicates the job was stopped before the work could run.
	ErrJobStopped = errors.New("job stopped")
)
