package client

import (
	"context"
	"time"
)

// RequestOption customizes a single remote operation.
type RequestOption func(o *requestOptions)

type requestOptions struct {
	timeout time.Duration
}

// WithRequestTimeout bounds a single operation with a deadline. The session
// holding the client is not affected by an expired call; only a transport
// level failure marks it broken.
func WithRequestTimeout(timeout time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = timeout
	}
}

func newRequestOptions(options []RequestOption) *requestOptions {
	ret := &requestOptions{}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (o *requestOptions) apply(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.timeout)
}
