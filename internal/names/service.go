// Package names is the read-only query layer over the name store.
//
// Every read first gives the configured Initializer a chance to populate
// an empty store, then maps stored records to core.Name values.
package names

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neteinstein/pickaname/internal/notifier"
	"github.com/neteinstein/pickaname/internal/search"
	"github.com/neteinstein/pickaname/pkg/core"
)

// ErrNameNotFound reports a lookup for an id that is not stored.
// Service methods signal absence with found=false; front ends use this
// sentinel to turn that into an error.
var ErrNameNotFound = errors.New("name not found")

// Initializer populates the store on first access.
type Initializer interface {
	EnsurePopulated(ctx context.Context) error
}

// Service answers name queries.
type Service struct {
	store    core.NameStore
	init     Initializer
	notifier *notifier.Notifier
}

// Option configures a Service.
type Option func(*Service)

// WithInitializer runs init before every read.
func WithInitializer(init Initializer) Option {
	return func(s *Service) { s.init = init }
}

// WithNotifier wires change pings for Subscribe.
func WithNotifier(n *notifier.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService creates a query Service over store.
func NewService(store core.NameStore, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notifier.New()
	}
	return s
}

func (s *Service) ensure(ctx context.Context) error {
	if s.init == nil {
		return nil
	}
	return s.init.EnsurePopulated(ctx)
}

// ListAllowed returns all allowed names in ascending id order.
func (s *Service) ListAllowed(ctx context.Context) ([]core.Name, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	records, err := s.store.QueryAllowed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list allowed names: %w", err)
	}
	return core.ToNames(records), nil
}

// Search returns the allowed names containing query, ignoring case.
// A blank query returns every allowed name.
func (s *Service) Search(ctx context.Context, query string) ([]core.Name, error) {
	all, err := s.ListAllowed(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}

	matches := make([]core.Name, 0, len(all))
	for _, n := range all {
		if search.ContainsFold(n.Name, query) {
			matches = append(matches, n)
		}
	}
	return matches, nil
}

// SearchAll returns every stored name containing query, allowed or not.
// Case handling follows the store's configuration.
func (s *Service) SearchAll(ctx context.Context, query string) ([]core.Name, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	records, err := s.store.QuerySearch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search names: %w", err)
	}
	return core.ToNames(records), nil
}

// GetByID returns the name with the given id. found is false when absent.
func (s *Service) GetByID(ctx context.Context, id int64) (core.Name, bool, error) {
	if err := s.ensure(ctx); err != nil {
		return core.Name{}, false, err
	}
	record, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return core.Name{}, false, fmt.Errorf("failed to get name %d: %w", id, err)
	}
	if !found {
		return core.Name{}, false, nil
	}
	return record.ToName(), true, nil
}

// IsPopulated reports whether the store holds at least one record.
func (s *Service) IsPopulated(ctx context.Context) (bool, error) {
	if err := s.ensure(ctx); err != nil {
		return false, err
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count names: %w", err)
	}
	return n > 0, nil
}

// Subscribe returns a channel pinged whenever the stored set changes.
// Re-query after each ping. Call Unsubscribe when done.
func (s *Service) Subscribe() <-chan struct{} {
	return s.notifier.Subscribe()
}

// Unsubscribe stops pings on ch and closes it.
func (s *Service) Unsubscribe(ch <-chan struct{}) {
	s.notifier.Unsubscribe(ch)
}
