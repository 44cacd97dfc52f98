package google

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestKindFromCode(t *testing.T) {
	cases := []struct {
		name string
		err  *googleapi.Error
		want ErrorKind
	}{
		{"bad request", &googleapi.Error{Code: 400}, KindBadRequest},
		{"unauthorized", &googleapi.Error{Code: 401}, KindAuthentication},
		{"forbidden", &googleapi.Error{Code: 403}, KindAuthentication},
		{"forbidden rate limit", &googleapi.Error{
			Code:   403,
			Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}},
		}, KindRateLimit},
		{"forbidden quota", &googleapi.Error{
			Code:   403,
			Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}},
		}, KindRateLimit},
		{"not found", &googleapi.Error{Code: 404}, KindNotFound},
		{"timeout", &googleapi.Error{Code: 408}, KindTimeout},
		{"too many requests", &googleapi.Error{Code: 429}, KindRateLimit},
		{"server error", &googleapi.Error{Code: 500}, KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, kindFromCode(tc.err))
		})
	}
}

func TestClassify(t *testing.T) {
	perr := classify("list events", &googleapi.Error{Code: 404})
	assert.Equal(t, KindNotFound, perr.Kind)
	assert.Equal(t, "list events", perr.Op)

	perr = classify("list events", context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, perr.Kind)

	perr = classify("list events", errors.New("something odd"))
	assert.Equal(t, KindUnknown, perr.Kind)
}

func TestClassifyWrappedError(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), &googleapi.Error{Code: 401})
	perr := classify("insert event", wrapped)
	assert.Equal(t, KindAuthentication, perr.Kind)
}

func TestRetryable(t *testing.T) {
	assert.True(t, (&ProviderError{Kind: KindRateLimit}).Retryable())
	assert.True(t, (&ProviderError{Kind: KindTimeout}).Retryable())
	assert.False(t, (&ProviderError{Kind: KindAuthentication}).Retryable())
	assert.False(t, (&ProviderError{Kind: KindNotFound}).Retryable())
	assert.False(t, (&ProviderError{Kind: KindUnknown}).Retryable())
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := &googleapi.Error{Code: 404}
	perr := classify("delete event", inner)

	var gerr *googleapi.Error
	assert.True(t, errors.As(perr, &gerr))
	assert.Equal(t, 404, gerr.Code)
}
