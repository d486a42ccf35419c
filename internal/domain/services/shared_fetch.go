package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a shared refresh that no caller can cancel
const DefaultFetchTimeout = 30 * time.Second

// sharedFetch runs fn once per key for every concurrent caller. fn gets a
// context detached from the caller that started it, so one caller giving up
// does not fail the fetch for the others. A caller whose own ctx ends stops
// waiting and gets ctx.Err().
func sharedFetch(ctx context.Context, group *singleflight.Group, key string, timeout time.Duration, fn func(ctx context.Context) (any, error)) (any, error) {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ch := group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(fetchCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// callerGaveUp reports whether err is the caller's own cancellation rather
// than a failed fetch
func callerGaveUp(ctx context.Context, err error) bool {
	ctxErr := ctx.Err()
	return ctxErr != nil && errors.Is(err, ctxErr)
}
