// Package fanout runs independent lookups concurrently and merges their
// results into a single keyed set.
//
// A Group either yields every result or exactly one error. The first failure
// cancels the context handed to the remaining lookups; whatever they return
// afterwards is discarded.
package fanout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"golang.org/x/sync/errgroup"
)

// Func is a single lookup. It must honor ctx.
type Func func(ctx context.Context) (any, error)

type Options struct {
	// OperationTimeout bounds every lookup individually. Zero means no bound
	// beyond the caller's context.
	OperationTimeout time.Duration
}

type Group struct {
	ctx  context.Context
	eg   *errgroup.Group
	opts Options

	mu      sync.Mutex
	keys    []string
	values  map[string]any
	waiting bool
}

// New starts an empty group bound to ctx.
func New(ctx context.Context, opts Options) *Group {
	eg, egCtx := errgroup.WithContext(ctx)
	return &Group{
		ctx:    egCtx,
		eg:     eg,
		opts:   opts,
		values: map[string]any{},
	}
}

// Go starts fn under key. Keys must be unique within a group, and Go must not
// be called once Wait has been.
func (g *Group) Go(key string, fn Func) {
	g.mu.Lock()
	if g.waiting {
		g.mu.Unlock()
		panic("fanout: Go called after Wait")
	}
	for _, k := range g.keys {
		if k == key {
			g.mu.Unlock()
			panic(fmt.Sprintf("fanout: duplicate key %q", key))
		}
	}
	g.keys = append(g.keys, key)
	g.mu.Unlock()

	g.eg.Go(func() error {
		v, err := g.run(key, fn)
		if err != nil {
			return err
		}
		g.mu.Lock()
		g.values[key] = v
		g.mu.Unlock()
		return nil
	})
}

type outcome struct {
	value any
	err   error
}

func (g *Group) run(key string, fn Func) (any, error) {
	ctx := g.ctx
	if g.opts.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.OperationTimeout)
		defer cancel()
	}

	// fn runs on its own goroutine so a lookup that ignores ctx can't hold the
	// group past its deadline.
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(o.err, context.DeadlineExceeded) {
			return nil, errcodes.Timeout(key)
		}
		return o.value, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errcodes.Timeout(key)
		}
		return nil, errors.WithStack(ctx.Err())
	}
}

// Wait blocks until every lookup has finished. On failure it returns the
// first error and no results.
func (g *Group) Wait() (*Results, error) {
	g.mu.Lock()
	g.waiting = true
	g.mu.Unlock()

	if err := g.eg.Wait(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, len(g.keys))
	copy(keys, g.keys)
	values := make(map[string]any, len(g.values))
	for k, v := range g.values {
		values[k] = v
	}
	return &Results{keys: keys, values: values}, nil
}

// Results is the merged output of a group, ordered the way the lookups were
// declared.
type Results struct {
	keys   []string
	values map[string]any
}

func (r *Results) Keys() []string {
	return r.keys
}

func (r *Results) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the result stored under key as a T, or T's zero value when the
// key is missing, the lookup returned nil, or the type doesn't match.
func Value[T any](r *Results, key string) T {
	v, _ := r.values[key].(T)
	return v
}

// Optional adapts fn so that a not-found error becomes a nil result. Whether
// a missing record matters is up to whoever reads the results.
func Optional(fn Func) Func {
	return func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if errcodes.IsNotFound(err) {
			return nil, nil
		}
		return v, err
	}
}
