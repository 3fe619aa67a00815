package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Group starts requests for fn. Calls with an identical input that overlap in
// time share one call to fn; a finished call is never reused and nothing is
// retried.
type Group[In comparable, Out any] struct {
	fn func(context.Context, In) (Out, error)
	sf singleflight.Group
}

// NewGroup wraps fn.
func NewGroup[In comparable, Out any](fn func(context.Context, In) (Out, error)) *Group[In, Out] {
	return &Group[In, Out]{fn: fn}
}

// Do starts fn(in), or joins the running call for the same input. The call runs
// detached from ctx's cancellation, like Start.
func (g *Group[In, Out]) Do(ctx context.Context, in In) *Request[Out] {
	detached := context.WithoutCancel(ctx)

	// singleflight re-panics inside DoChan, so fn's panics are recovered first.
	ch := g.sf.DoChan(groupKey(in), func() (any, error) {
		return recovered(detached, func(ctx context.Context) (Out, error) {
			return g.fn(ctx, in)
		})
	})

	r := &Request[Out]{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		res := <-ch
		if res.Err != nil {
			r.err = res.Err
			return
		}
		r.value, _ = res.Val.(Out)
	}()

	return r
}

// groupKey spells out every field of in, so distinct inputs never share a key.
func groupKey[In comparable](in In) string {
	return fmt.Sprintf("%T:%#v", in, in)
}
