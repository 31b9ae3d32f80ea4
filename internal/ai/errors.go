package ai

import "fmt"

// RemoteCallError is returned when a language model call fails: network errors, rate limits that outlast retries,
// timeouts, cancellation and malformed completions
type RemoteCallError struct {
	Provider string
	cause    error
}

func NewRemoteCallError(provider string, cause error) *RemoteCallError {
	return &RemoteCallError{Provider: provider, cause: cause}
}

func (rce *RemoteCallError) Error() string {
	return fmt.Sprintf("%s call failed: %s", rce.Provider, rce.cause)
}

func (rce *RemoteCallError) Unwrap() error {
	return rce.cause
}
