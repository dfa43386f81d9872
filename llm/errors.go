package llm

import (
	"errors"
	"fmt"
)

// ErrInvalidResponseFormat indicates a 2xx response missing the fields the
// protocol promises (no b64_json and no url in an image payload, etc.)
var ErrInvalidResponseFormat = errors.New("invalid response format from provider")

// ProviderDisabledError is returned when a request is dispatched to a
// provider whose Enabled flag is false. Callers are expected to pre-check,
// but the routers reject defensively before any network I/O.
type ProviderDisabledError struct {
	Provider string
}

func (e *ProviderDisabledError) Error() string {
	return fmt.Sprintf("provider %q is disabled", e.Provider)
}

// APIError is a non-2xx HTTP response from a backend
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.Status, e.Body)
}

// NetworkError is a transport-level failure (DNS, connection refused, ...)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError is a response body that could not be interpreted
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnsupportedProviderError names an image backend kind with no adapter
type UnsupportedProviderError struct {
	Kind ImageProviderKind
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("provider type %s not implemented", e.Kind)
}
