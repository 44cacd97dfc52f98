package google

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies a provider failure. The HTTP layer maps kinds to
// statuses and user messages instead of inspecting error strings.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthentication
	KindNotFound
	KindRateLimit
	KindTimeout
	KindBadRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "calendar-not-found"
	case KindRateLimit:
		return "rate-limit"
	case KindTimeout:
		return "timeout"
	case KindBadRequest:
		return "malformed-request"
	default:
		return "unknown"
	}
}

// ProviderError is a tagged calendar provider failure.
type ProviderError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("calendar %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may reasonably retry. Quota and
// timeout failures pass; credential and permission failures do not.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindRateLimit || e.Kind == KindTimeout
}

// classify tags err with an ErrorKind derived from its type, never from
// message substrings.
func classify(op string, err error) *ProviderError {
	kind := KindUnknown

	var gerr *googleapi.Error
	var nerr net.Error
	switch {
	case errors.As(err, &gerr):
		kind = kindFromCode(gerr)
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &nerr) && nerr.Timeout():
		kind = KindTimeout
	}

	return &ProviderError{Kind: kind, Op: op, Err: err}
}

func kindFromCode(gerr *googleapi.Error) ErrorKind {
	switch gerr.Code {
	case 400:
		return KindBadRequest
	case 401:
		return KindAuthentication
	case 403:
		for _, item := range gerr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" || item.Reason == "quotaExceeded" {
				return KindRateLimit
			}
		}
		return KindAuthentication
	case 404:
		return KindNotFound
	case 408:
		return KindTimeout
	case 429:
		return KindRateLimit
	default:
		return KindUnknown
	}
}
