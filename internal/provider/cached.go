package provider

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/persistorai/degrees/internal/models"
)

// sharedTimeout bounds a lookup shared by concurrent callers. The shared
// call does not inherit any single caller's cancellation or deadline.
const sharedTimeout = 2 * time.Minute

// Cached memoizes successful lookups of an underlying Provider in a bounded
// LRU. Concurrent lookups of the same reference share one call. Failures
// are never cached.
type Cached struct {
	next      Provider
	names     *lru.Cache[string, string]
	neighbors *lru.Cache[string, []models.Association]
	group     singleflight.Group
	onHit     func(op string)
}

// NewCached wraps next with caches holding up to size entries each.
func NewCached(next Provider, size int) (*Cached, error) {
	names, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("provider/cache: %w", err)
	}

	neighbors, err := lru.New[string, []models.Association](size)
	if err != nil {
		return nil, fmt.Errorf("provider/cache: %w", err)
	}

	return &Cached{next: next, names: names, neighbors: neighbors, onHit: func(string) {}}, nil
}

// ResolveName returns the cached name for ref or asks the wrapped provider.
func (c *Cached) ResolveName(ctx context.Context, ref string) (string, error) {
	if name, ok := c.names.Get(ref); ok {
		c.onHit("name")
		return name, nil
	}

	val, err := c.shared(ctx, "name", ref, func(ctx context.Context) (any, error) {
		if name, ok := c.names.Get(ref); ok {
			return name, nil
		}

		name, err := c.next.ResolveName(ctx, ref)
		if err != nil {
			return nil, err
		}

		c.names.Add(ref, name)

		return name, nil
	})
	if err != nil {
		return "", err
	}

	name, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("provider/cache: unexpected singleflight result type %T", val)
	}

	return name, nil
}

// Neighbors returns a copy of the cached neighbor list for ref or asks the
// wrapped provider.
func (c *Cached) Neighbors(ctx context.Context, ref string) ([]models.Association, error) {
	if list, ok := c.neighbors.Get(ref); ok {
		c.onHit("neighbors")
		return slices.Clone(list), nil
	}

	val, err := c.shared(ctx, "neighbors", ref, func(ctx context.Context) (any, error) {
		if list, ok := c.neighbors.Get(ref); ok {
			return list, nil
		}

		list, err := c.next.Neighbors(ctx, ref)
		if err != nil {
			return nil, err
		}

		list = slices.Clone(list)
		c.neighbors.Add(ref, list)

		return list, nil
	})
	if err != nil {
		return nil, err
	}

	list, ok := val.([]models.Association)
	if !ok {
		return nil, fmt.Errorf("provider/cache: unexpected singleflight result type %T", val)
	}

	return slices.Clone(list), nil
}

// shared runs fn once for all concurrent callers of op on ref. Each caller
// stops waiting when its own ctx is done; the call itself keeps running for
// the others. A shared call that times out reads as unavailable.
func (c *Cached) shared(ctx context.Context, op, ref string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(op+"\x00"+ref, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedTimeout)
		defer cancel()

		return fn(sctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil && ctx.Err() == nil &&
			(errors.Is(res.Err, context.DeadlineExceeded) || errors.Is(res.Err, context.Canceled)) {
			return nil, unavailable(op, ref, res.Err)
		}

		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// OnHit registers fn to be called with the operation name on every cache hit.
func (c *Cached) OnHit(fn func(op string)) {
	if fn != nil {
		c.onHit = fn
	}
}

// Len reports the number of cached names and neighbor lists.
func (c *Cached) Len() (names, neighbors int) {
	return c.names.Len(), c.neighbors.Len()
}
