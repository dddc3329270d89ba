package errx

import (
	"fmt"
	"net/http"
)

// UpstreamError describes a non-success response from an external API.
type UpstreamError struct {
	Service string
	Status  int
	Detail  string
}

func (e *UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Detail)
}

// Is lets errors.Is(err, ErrUpstream) match any upstream failure.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// Upstream wraps a non-2xx response from service. The AppError is always a 502
// so the original status is only visible through errors.As on UpstreamError.
func Upstream(service string, status int, detail string) error {
	return New(&UpstreamError{Service: service, Status: status, Detail: detail}, http.StatusBadGateway, UpstreamErrorMessage)
}

// WrapTransport wraps a network level failure talking to service.
func WrapTransport(service string, err error) error {
	if err == nil {
		return nil
	}
	return New(fmt.Errorf("%s: %w: %w", service, ErrUpstream, err), http.StatusBadGateway, UpstreamErrorMessage)
}
