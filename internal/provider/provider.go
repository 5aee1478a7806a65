package provider

import "context"

// Sink abstracts the actual push delivery to a device. The core treats
// delivery as a black box with a boolean outcome and no retry; a false
// return is counted as a failed delivery, nothing more.
//
// Injecting this interface is what makes drain-cycle tests
// deterministic: always-success, always-fail, and fail-every-Nth sinks
// are all one SinkFunc away.
type Sink interface {
	Deliver(ctx context.Context, title, message, token string) bool
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(ctx context.Context, title, message, token string) bool

func (f SinkFunc) Deliver(ctx context.Context, title, message, token string) bool {
	return f(ctx, title, message, token)
}
