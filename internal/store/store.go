// Package store is the data-access layer for costume records.
package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/costumeconnections/costumes/internal/db"
)

// Opener produces a ready-to-use database handle. It is called lazily, on the
// first store operation.
type Opener func(ctx context.Context) (*db.DB, error)

// Store owns the process-wide database handle. The handle is opened once, on
// first use, and shared by every request; the driver pools connections.
type Store struct {
	open Opener

	mu     sync.Mutex
	handle atomic.Pointer[db.DB]
}

// New returns a store that opens its database on first use.
func New(open Opener) *Store {
	return &Store{open: open}
}

// NewWithDB returns a store over an already opened handle.
func NewWithDB(d *db.DB) *Store {
	s := &Store{open: func(context.Context) (*db.DB, error) { return d, nil }}
	s.handle.Store(d)
	return s
}

// conn returns the memoized handle, opening it if needed. A failed open is
// not cached, so the next call tries again.
func (s *Store) conn(ctx context.Context) (*db.DB, error) {
	if d := s.handle.Load(); d != nil {
		return d, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d := s.handle.Load(); d != nil {
		return d, nil
	}

	d, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.handle.Store(d)
	return d, nil
}

// Ping opens the handle if necessary and checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	d, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := d.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// Close releases the handle if it was ever opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.handle.Swap(nil)
	if d == nil {
		return nil
	}
	return d.Close()
}
