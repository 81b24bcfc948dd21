package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// CollectionOptions configures every collection built from a store.
type CollectionOptions struct {
	KeyPrefix  string
	MaxRetries int
	// OnConflict is called with the collection name whenever a write loses a race.
	OnConflict func(collection string)
}

func (o CollectionOptions) key(name string) string {
	if o.KeyPrefix == "" {
		return name
	}
	return o.KeyPrefix + ":" + name
}

// Collection is a JSON list of T stored as one blob.
type Collection[T any] struct {
	store      BlobStore
	name       string
	key        string
	maxRetries int
	onConflict func(string)
}

// NewCollection binds name to store.
func NewCollection[T any](store BlobStore, name string, opts CollectionOptions) *Collection[T] {
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Collection[T]{
		store:      store,
		name:       name,
		key:        opts.key(name),
		maxRetries: retries,
		onConflict: opts.OnConflict,
	}
}

// Name returns the unprefixed collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Load returns the current items; an absent key yields an empty list.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	items, _, err := c.load(ctx)
	return items, err
}

func (c *Collection[T]) load(ctx context.Context) ([]T, int64, error) {
	blob, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", c.name, err)
	}
	items := []T{}
	if len(blob.Payload) == 0 {
		return items, blob.Version, nil
	}
	if err := json.Unmarshal(blob.Payload, &items); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", c.name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, blob.Version, nil
}

// Save overwrites the collection. Concurrent writers resolve as last write wins.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	return c.Mutate(ctx, func([]T) ([]T, error) { return items, nil })
}

// Mutate loads the collection, applies fn and writes the result if the
// version is unchanged, retrying on conflict. fn may run more than once and
// must not keep state between calls. Returning ErrNoChange skips the write.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	for attempt := 0; ; attempt++ {
		items, version, err := c.load(ctx)
		if err != nil {
			return err
		}

		next, err := fn(items)
		if err != nil {
			if errors.Is(err, ErrNoChange) {
				return nil
			}
			return err
		}
		if next == nil {
			next = []T{}
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.name, err)
		}

		err = c.store.CompareAndSwap(ctx, c.key, version, payload)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return fmt.Errorf("write %s: %w", c.name, err)
		}
		if c.onConflict != nil {
			c.onConflict(c.name)
		}
		if attempt >= c.maxRetries {
			return fmt.Errorf("write %s after %d attempts: %w", c.name, attempt+1, ErrVersionConflict)
		}
	}
}
