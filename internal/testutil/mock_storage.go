// mock_storage.go - Mock snapshot storage implementation for testing
package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/layout-editor/backend/internal/models"
	"github.com/layout-editor/backend/internal/storage"
)

// MockStorage implements storage.Store in memory for testing
type MockStorage struct {
	snapshots map[string]*models.Snapshot
	mu        sync.RWMutex

	// FailSave makes Save return an error, for exercising failure paths.
	FailSave bool
}

// NewMockStorage creates a new empty mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		snapshots: make(map[string]*models.Snapshot),
	}
}

func (m *MockStorage) Save(_ context.Context, name string, containers []models.Container) (*models.SnapshotInfo, error) {
	if m.FailSave {
		return nil, errors.New("mock save failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	info := models.SnapshotInfo{
		ID:             generateTestID(),
		Name:           name,
		Size:           int64(len(containers)),
		ContainerCount: len(containers),
		CreatedAt:      time.Now(),
	}
	m.snapshots[info.ID] = &models.Snapshot{Info: info, Containers: cloneAll(containers)}
	return &info, nil
}

func (m *MockStorage) Get(_ context.Context, id string) (*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return &models.Snapshot{Info: snap.Info, Containers: cloneAll(snap.Containers)}, nil
}

func (m *MockStorage) List(_ context.Context, limit int) ([]*models.SnapshotInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]*models.SnapshotInfo, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		info := snap.Info
		infos = append(infos, &info)
	}
	slices.SortFunc(infos, func(a, b *models.SnapshotInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

func (m *MockStorage) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.snapshots[id]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	delete(m.snapshots, id)
	return nil
}

func (m *MockStorage) Rename(_ context.Context, id string, newName string) (*models.SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	snap.Info.Name = newName
	info := snap.Info
	return &info, nil
}

func (m *MockStorage) Close() error { return nil }

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddSnapshot stores a snapshot under a fixed id
func (m *MockStorage) AddSnapshot(id, name string, containers []models.Container) *models.SnapshotInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := models.SnapshotInfo{
		ID:             id,
		Name:           name,
		ContainerCount: len(containers),
		CreatedAt:      time.Now(),
	}
	m.snapshots[id] = &models.Snapshot{Info: info, Containers: cloneAll(containers)}
	return &info
}

// GetSnapshotCount returns the number of stored snapshots
func (m *MockStorage) GetSnapshotCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// Clear removes all snapshots
func (m *MockStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = make(map[string]*models.Snapshot)
}

func cloneAll(containers []models.Container) []models.Container {
	out := make([]models.Container, len(containers))
	for i, c := range containers {
		out[i] = c.Clone()
	}
	return out
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}
