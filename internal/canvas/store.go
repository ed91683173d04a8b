// Package canvas holds the authoritative container tree of a layout.
//
// Every mutation runs as a transaction over a working copy of the tree. The
// working copy is validated before it replaces the live state, so the
// parent/children back-references, acyclicity and id uniqueness hold after
// every public call. Unknown ids degrade to no-ops rather than errors because
// UI callbacks routinely race with deletions.
package canvas

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/layout-editor/backend/internal/geometry"
	"github.com/layout-editor/backend/internal/models"
)

var (
	// ErrDuplicateID is returned when adding a container whose id is taken.
	ErrDuplicateID = errors.New("duplicate container id")

	// ErrUnknownParent is returned when adding under a parent that does not exist.
	ErrUnknownParent = errors.New("unknown parent container")

	// ErrInconsistent is returned when a transaction would leave the tree broken.
	ErrInconsistent = errors.New("container hierarchy is inconsistent")
)

// Event describes a committed change.
type Event struct {
	Op      string   `json:"op"`
	IDs     []string `json:"ids,omitempty"`
	Version uint64   `json:"version"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for change and rollback messages.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithDefaults overrides the geometry and styles of new containers.
func WithDefaults(c models.Container) Option {
	return func(s *Store) {
		c.ID = ""
		c.ParentID = ""
		c.Children = []string{}
		s.defaults = c
	}
}

// WithIDGenerator overrides how fresh ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store is the container tree. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	st       state
	version  uint64
	defaults models.Container
	newID    func() string
	logger   *log.Logger

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		st:       newState(),
		defaults: models.DefaultContainer(),
		newID:    uuid.NewString,
		logger:   log.New(io.Discard),
		subs:     make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to be called after each committed change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Version increases by one with every committed change.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Add inserts a container built from the defaults with p merged over them.
// An empty id gets a fresh one. A non-empty ParentID in p attaches the new
// container to that parent.
func (s *Store) Add(id string, p models.Patch) (string, error) {
	var added string
	_, err := s.commit("add", func(tx *Tx) error {
		var err error
		added, err = tx.Add(id, p)
		return err
	})
	if err != nil {
		return "", err
	}
	return added, nil
}

// Update merges p into the container. Styles merge key by key. It reports
// whether anything changed; unknown ids and value-identical updates are no-ops.
func (s *Store) Update(id string, p models.Patch) bool {
	changed, err := s.commit("update", func(tx *Tx) error {
		tx.Update(id, p)
		return nil
	})
	return err == nil && changed
}

// Remove deletes the container and its whole subtree.
func (s *Store) Remove(id string) bool {
	changed, err := s.commit("remove", func(tx *Tx) error {
		tx.Remove(id)
		return nil
	})
	return err == nil && changed
}

// Nest moves childID under parentID, keeping its canvas position.
func (s *Store) Nest(childID, parentID string) bool {
	changed, err := s.commit("nest", func(tx *Tx) error {
		tx.Nest(childID, parentID)
		return nil
	})
	return err == nil && changed
}

// Unnest makes childID a root, keeping its canvas position.
func (s *Store) Unnest(childID string) bool {
	changed, err := s.commit("unnest", func(tx *Tx) error {
		tx.Unnest(childID)
		return nil
	})
	return err == nil && changed
}

// Reset removes every container.
func (s *Store) Reset() {
	_, _ = s.commit("reset", func(tx *Tx) error {
		tx.Reset()
		return nil
	})
}

// Load replaces the whole tree with containers, keeping their ids.
// Parents are inserted before their children regardless of input order.
func (s *Store) Load(containers []models.Container) error {
	_, err := s.commit("load", func(tx *Tx) error {
		tx.Reset()
		return tx.Load(containers)
	})
	return err
}

// Batch runs fn as a single transaction. If fn returns an error, or the
// resulting tree is inconsistent, nothing is applied.
func (s *Store) Batch(fn func(tx *Tx) error) error {
	_, err := s.commit("batch", fn)
	return err
}

func (s *Store) commit(op string, fn func(tx *Tx) error) (bool, error) {
	s.mu.Lock()

	tx := &Tx{st: s.st.clone(), defaults: s.defaults, newID: s.newID}
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		s.logger.Debug("canvas transaction aborted", "op", op, "err", err)
		return false, err
	}
	if !tx.dirty {
		s.mu.Unlock()
		return false, nil
	}
	if err := tx.st.validate(); err != nil {
		s.mu.Unlock()
		s.logger.Warn("canvas transaction rolled back", "op", op, "err", err)
		return false, err
	}

	s.st = tx.st
	s.version++
	ev := Event{Op: op, IDs: tx.touched, Version: s.version}
	s.mu.Unlock()

	s.logger.Debug("canvas updated", "op", op, "ids", ev.IDs, "version", ev.Version)
	s.notify(ev)
	return true, nil
}

func (s *Store) notify(ev Event) {
	s.subsMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Get returns a copy of the container.
func (s *Store) Get(id string) (models.Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.st.containers[id]
	if !ok {
		return models.Container{}, false
	}
	return c.Clone(), true
}

// Children returns the children of parentID in their stored order.
func (s *Store) Children(parentID string) []models.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parent, ok := s.st.containers[parentID]
	if !ok {
		return []models.Container{}
	}
	out := make([]models.Container, 0, len(parent.Children))
	for _, id := range parent.Children {
		if c, ok := s.st.containers[id]; ok {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Roots returns all containers without a parent, in insertion order.
func (s *Store) Roots() []models.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Container
	for _, id := range s.st.order {
		if c := s.st.containers[id]; c.IsRoot() {
			out = append(out, c.Clone())
		}
	}
	return out
}

// All returns every container in insertion order.
func (s *Store) All() []models.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Container, 0, len(s.st.order))
	for _, id := range s.st.order {
		out = append(out, s.st.containers[id].Clone())
	}
	return out
}

// Snapshot returns a copy of the container map.
func (s *Store) Snapshot() map[string]models.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.snapshot()
}

// Len returns the number of containers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.st.containers)
}

// AbsolutePosition returns the canvas position of the container.
func (s *Store) AbsolutePosition(id string) (models.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geometry.AbsolutePosition(id, s.st.containers)
}

// state is the container map plus insertion order.
type state struct {
	containers map[string]models.Container
	order      []string
}

func newState() state {
	return state{containers: make(map[string]models.Container)}
}

func (st state) clone() state {
	out := state{
		containers: make(map[string]models.Container, len(st.containers)),
		order:      slices.Clone(st.order),
	}
	for id, c := range st.containers {
		out.containers[id] = c.Clone()
	}
	return out
}

func (st state) snapshot() map[string]models.Container {
	return st.clone().containers
}

// validate checks the tree invariants: every child exists and points back at
// its parent, every parent lists its children, ids are unique, no cycles.
func (st state) validate() error {
	if len(st.order) != len(st.containers) {
		return fmt.Errorf("%w: order has %d ids for %d containers", ErrInconsistent, len(st.order), len(st.containers))
	}
	for id, c := range st.containers {
		if c.ID != id {
			return fmt.Errorf("%w: container stored under %q has id %q", ErrInconsistent, id, c.ID)
		}
		if c.ParentID != "" {
			parent, ok := st.containers[c.ParentID]
			if !ok {
				return fmt.Errorf("%w: %s has unknown parent %s", ErrInconsistent, id, c.ParentID)
			}
			if !slices.Contains(parent.Children, id) {
				return fmt.Errorf("%w: %s is not listed by its parent %s", ErrInconsistent, id, c.ParentID)
			}
		}
		seen := make(map[string]struct{}, len(c.Children))
		for _, childID := range c.Children {
			if _, dup := seen[childID]; dup {
				return fmt.Errorf("%w: %s lists child %s twice", ErrInconsistent, id, childID)
			}
			seen[childID] = struct{}{}
			child, ok := st.containers[childID]
			if !ok {
				return fmt.Errorf("%w: %s lists unknown child %s", ErrInconsistent, id, childID)
			}
			if child.ParentID != id {
				return fmt.Errorf("%w: %s lists %s whose parent is %q", ErrInconsistent, id, childID, child.ParentID)
			}
		}
	}
	for id := range st.containers {
		if _, err := geometry.AbsolutePosition(id, st.containers); err != nil {
			return fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return nil
}
