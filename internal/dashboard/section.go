// Package dashboard holds the presenters that load view data from the record
// store. A presenter declares its reads as Dependencies; Activate runs them in
// parallel and a failed read only degrades its own Section.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/erpdesk/erpdesk/internal/erpapi"
)

// Loader reads one snapshot from the record store.
type Loader[T any] func(ctx context.Context) (T, error)

// Section holds the latest snapshot of one read. A failed refresh replaces the
// snapshot with the zero value and records the error.
type Section[T any] struct {
	name string
	load Loader[T]

	mu     sync.Mutex
	value  T
	err    error
	loaded bool
}

// NewSection returns an unloaded section.
func NewSection[T any](name string, load Loader[T]) *Section[T] {
	return &Section[T]{name: name, load: load}
}

// Name identifies the section in logs and metrics.
func (s *Section[T]) Name() string { return s.name }

// Refresh re-issues the read and replaces the snapshot wholesale. When
// refreshes overlap the last response to arrive wins.
func (s *Section[T]) Refresh(ctx context.Context) error {
	value, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	if err != nil {
		var zero T
		s.value = zero
		s.err = err
		return err
	}
	s.value = value
	s.err = nil
	return nil
}

// Value returns the current snapshot.
func (s *Section[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Err returns the error of the last refresh.
func (s *Section[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Degraded reports whether the last refresh failed.
func (s *Section[T]) Degraded() bool {
	return s.Err() != nil
}

// Loaded reports whether Refresh has completed at least once.
func (s *Section[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Dependency exposes the section to Activate.
func (s *Section[T]) Dependency() Dependency {
	return Dependency{Name: s.name, Load: s.Refresh}
}

// Dependency is one named read a view needs.
type Dependency struct {
	Name string
	Load func(ctx context.Context) error
}

// Runtime carries what presenters need to run their reads.
type Runtime struct {
	Logger *slog.Logger
	// Timeout bounds one activation. Zero means the request context decides.
	Timeout time.Duration
	// OnFailure is called once for every failed read, except reads refused
	// because the credential was rejected.
	OnFailure func(section string, err error)
}

func (rt Runtime) logger() *slog.Logger {
	if rt.Logger == nil {
		return slog.Default()
	}
	return rt.Logger
}

// Activate runs deps in parallel and waits for all of them. A failing
// dependency is logged and reported; it never cancels the others. The returned
// map holds the failures by dependency name.
func (rt Runtime) Activate(ctx context.Context, deps ...Dependency) map[string]error {
	if rt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.Timeout)
		defer cancel()
	}

	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures = make(map[string]error)
	)
	for _, dep := range deps {
		dep := dep
		g.Go(func() error {
			if err := dep.Load(ctx); err != nil {
				rt.report(dep.Name, err)
				mu.Lock()
				failures[dep.Name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

func (rt Runtime) report(section string, err error) {
	logger := rt.logger().With(slog.String("section", section))
	switch {
	case errors.Is(err, erpapi.ErrUnauthorized):
		// The gate owns rejected credentials; the section is not at fault.
		logger.Info("section skipped, credential rejected")
		return
	case errors.Is(err, erpapi.ErrNotFound):
		logger.Warn("section source not found", slog.Any("error", err))
	default:
		logger.Error("section load failed", slog.Any("error", err))
	}
	if rt.OnFailure != nil {
		rt.OnFailure(section, err)
	}
}
