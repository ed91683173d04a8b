package workspace

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/layout-editor/backend/internal/models"
)

// DefaultMaxWorkspaces limits open workspaces to bound memory.
const DefaultMaxWorkspaces = 10

// KeepAliveWindow protects recently used workspaces from eviction and cleanup.
const KeepAliveWindow = 5 * time.Minute

var (
	// ErrNotFound is returned for an unknown workspace id.
	ErrNotFound = errors.New("workspace not found")

	// ErrTooManyWorkspaces is returned when the limit is reached and every
	// workspace is still in use.
	ErrTooManyWorkspaces = errors.New("too many open workspaces")
)

// Options configures a Manager.
type Options struct {
	MaxWorkspaces int
	Defaults      models.Container
	Presets       models.DevicePresets
	Logger        *log.Logger
}

// Manager owns the open workspaces.
type Manager struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
	opts       Options
	logger     *log.Logger
}

// NewManager creates a manager. Zero options fall back to the built-in
// defaults.
func NewManager(opts Options) *Manager {
	if opts.MaxWorkspaces <= 0 {
		opts.MaxWorkspaces = DefaultMaxWorkspaces
	}
	if opts.Defaults.Width == 0 && opts.Defaults.Height == 0 {
		opts.Defaults = models.DefaultContainer()
	}
	if len(opts.Presets.Devices) == 0 {
		opts.Presets = models.BuiltinDevicePresets()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Manager{
		workspaces: make(map[string]*Workspace),
		opts:       opts,
		logger:     opts.Logger,
	}
}

// Presets returns the device presets new workspaces use.
func (m *Manager) Presets() models.DevicePresets {
	return m.opts.Presets
}

// Create opens a new empty workspace. When the limit is reached the least
// recently used idle workspace is evicted.
func (m *Manager) Create(name string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.workspaces) >= m.opts.MaxWorkspaces {
		if !m.evictLocked() {
			return nil, ErrTooManyWorkspaces
		}
	}

	id := uuid.New().String()
	if name == "" {
		name = "Untitled " + shortID(id)
	}
	ws := newWorkspace(id, name, m.opts.Defaults, m.opts.Presets, m.logger)
	m.workspaces[id] = ws
	m.logger.Info("workspace created", "id", shortID(id), "name", name)
	return ws, nil
}

func (m *Manager) evictLocked() bool {
	keepAliveCutoff := time.Now().Add(-KeepAliveWindow)

	var oldest *Workspace
	for _, ws := range m.workspaces {
		last := ws.LastAccessed()
		if last.After(keepAliveCutoff) {
			continue
		}
		if oldest == nil || last.Before(oldest.LastAccessed()) {
			oldest = ws
		}
	}
	if oldest == nil {
		return false
	}
	m.removeLocked(oldest.ID)
	m.logger.Info("workspace evicted to free memory", "id", shortID(oldest.ID))
	return true
}

// Get returns a workspace and marks it as in use.
func (m *Manager) Get(id string) (*Workspace, error) {
	m.mu.RLock()
	ws, ok := m.workspaces[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	ws.Touch()
	return ws, nil
}

// Touch marks a workspace as in use without returning it.
func (m *Manager) Touch(id string) bool {
	_, err := m.Get(id)
	return err == nil
}

// List returns summaries of all workspaces, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.workspaces))
	for _, ws := range m.workspaces {
		out = append(out, ws.Info())
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Info) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Delete closes and removes a workspace.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workspaces[id]; !ok {
		return false
	}
	m.removeLocked(id)
	m.logger.Info("workspace deleted", "id", shortID(id))
	return true
}

func (m *Manager) removeLocked(id string) {
	if ws, ok := m.workspaces[id]; ok {
		ws.Close()
		delete(m.workspaces, id)
	}
}

// Len returns the number of open workspaces.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

// CleanupIdle removes workspaces not used within maxAge and returns how many
// were removed. Workspaces used within KeepAliveWindow are always kept.
func (m *Manager) CleanupIdle(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-KeepAliveWindow)

	removed := 0
	for id, ws := range m.workspaces {
		last := ws.LastAccessed()
		if last.After(keepAliveCutoff) || !last.Before(cutoff) {
			continue
		}
		m.removeLocked(id)
		removed++
		m.logger.Info("workspace cleaned up", "id", shortID(id), "idle", now.Sub(last).Round(time.Second))
	}
	return removed
}

// RunCleanup calls CleanupIdle every interval until ctx is done.
func (m *Manager) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupIdle(maxAge)
		}
	}
}
