package async

import (
	"context"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler in a new goroutine with panic recovery. The
// handler gets a fresh background context carrying the caller's logger,
// so cancellation of the inbound request does not abort the work.
// Handler errors and panics are logged and reported to Sentry when it
// is initialized.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger := ctxlog.From(newCtx)
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
				sentry.CurrentHub().Recover(r)
			}
		}()

		if err := handler(newCtx); err != nil {
			logger := ctxlog.From(newCtx)
			logger.Error("error in async handler", "error", err)
			sentry.CaptureException(err)
		}
	}()
}

// newBackgroundContext detaches from the caller's cancellation while
// keeping the ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
