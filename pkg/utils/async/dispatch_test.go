package async_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/skillsync/skillsync/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	t.Run("executes handler asynchronously", func(t *testing.T) {
		ctx := context.Background()
		var wg sync.WaitGroup
		executed := false

		wg.Add(1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer wg.Done()
			executed = true
			return nil
		})

		wg.Wait()
		gt.True(t, executed)
	})

	t.Run("handler error does not crash the process", func(t *testing.T) {
		ctx := context.Background()
		var wg sync.WaitGroup

		wg.Add(1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer wg.Done()
			return errors.New("test error")
		})

		wg.Wait()
	})

	t.Run("recovers from panic", func(t *testing.T) {
		ctx := context.Background()
		done := make(chan struct{}, 1)

		async.Dispatch(ctx, func(ctx context.Context) error {
			defer func() {
				done <- struct{}{}
			}()
			panic("test panic")
		})

		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.Fatal("handler did not complete within timeout")
		}
	})

	t.Run("preserves logger in new context", func(t *testing.T) {
		ctx := ctxlog.With(context.Background(), slog.Default())

		var wg sync.WaitGroup
		wg.Add(1)
		async.Dispatch(ctx, func(newCtx context.Context) error {
			defer wg.Done()
			gt.NotNil(t, ctxlog.From(newCtx))
			return nil
		})

		wg.Wait()
	})

	t.Run("detaches from caller cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup
		wg.Add(1)
		async.Dispatch(ctx, func(newCtx context.Context) error {
			defer wg.Done()

			cancel()
			select {
			case <-newCtx.Done():
				t.Error("new context was cancelled")
			default:
			}
			return nil
		})

		wg.Wait()
	})
}
