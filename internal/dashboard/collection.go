package dashboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/erpdesk/erpdesk/internal/erpapi"
)

// ErrConfirmationRequired is returned by Delete until the user confirms.
var ErrConfirmationRequired = errors.New("dashboard: delete requires confirmation")

// Mutation is one write against the record store.
type Mutation func(ctx context.Context) error

// Collection presents one module's record list. Writes are followed by a full
// re-fetch of the list and of any related sections; nothing is patched in
// place.
type Collection[T any] struct {
	rt      Runtime
	list    *Section[[]T]
	related []Dependency
}

// NewCollection builds a collection whose list is read by load. related reads
// are refreshed together with the list.
func NewCollection[T any](rt Runtime, name string, load Loader[[]T], related ...Dependency) *Collection[T] {
	return &Collection[T]{
		rt:      rt,
		list:    NewSection(name, load),
		related: related,
	}
}

// Dependencies lists the reads of the collection.
func (c *Collection[T]) Dependencies() []Dependency {
	return append([]Dependency{c.list.Dependency()}, c.related...)
}

// Load activates every read of the collection.
func (c *Collection[T]) Load(ctx context.Context) map[string]error {
	return c.rt.Activate(ctx, c.Dependencies()...)
}

// Items returns the current list, never nil.
func (c *Collection[T]) Items() []T {
	items := c.list.Value()
	if items == nil {
		return []T{}
	}
	return items
}

// Section exposes the list section.
func (c *Collection[T]) Section() *Section[[]T] {
	return c.list
}

// Apply runs a create, update or pin toggle and re-fetches on success. A
// failed write is returned untouched and the previous snapshot stays.
func (c *Collection[T]) Apply(ctx context.Context, op Mutation) error {
	if err := op(ctx); err != nil {
		return err
	}
	c.Load(ctx)
	return nil
}

// Delete runs op once confirmed. A target that is already gone counts as
// deleted; the list is re-fetched either way.
func (c *Collection[T]) Delete(ctx context.Context, confirmed bool, op Mutation) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := op(ctx); err != nil {
		if !errors.Is(err, erpapi.ErrNotFound) {
			return err
		}
		c.rt.logger().Info("delete target already gone", slog.String("section", c.list.Name()))
	}
	c.Load(ctx)
	return nil
}
