// Package enhancer sends an assembled prompt to a chat-completion service and
// returns the model's rewritten version.
package enhancer

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Enhancer rewrites a prompt using a remote model.
type Enhancer interface {
	Enhance(ctx context.Context, credential, prompt string) (string, error)
}

// CredentialValidator checks whether a credential is accepted by the remote
// service.
type CredentialValidator interface {
	ValidateCredential(ctx context.Context, credential string) bool
}

// RemoteServiceError is returned when the service answers with a non-2xx
// status.
type RemoteServiceError struct {
	StatusCode int
	Body       string
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("remote service returned status %d", e.StatusCode)
}

// TransportError wraps network-level failures: DNS, timeouts, resets,
// cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode returns the remote status carried by err, or 0.
func StatusCode(err error) int {
	var rse *RemoteServiceError
	if errors.As(err, &rse) {
		return rse.StatusCode
	}
	return 0
}

// IsTimeout reports whether err comes from a context deadline or an HTTP
// client timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
