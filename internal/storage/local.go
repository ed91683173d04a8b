package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/layout-editor/backend/internal/models"
)

const snapshotExt = ".json"

// LocalStore implements Store with one JSON file per snapshot.
type LocalStore struct {
	mu     sync.RWMutex
	dir    string
	infos  map[string]*models.SnapshotInfo
	logger *log.Logger
}

// NewLocalStore creates a LocalStore in dir and indexes the snapshots
// already there. Files that cannot be read are skipped with a warning on
// logger.
func NewLocalStore(dir string, logger *log.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	s := &LocalStore{
		dir:    dir,
		infos:  make(map[string]*models.SnapshotInfo),
		logger: logger,
	}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading snapshot directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		snap, err := s.read(strings.TrimSuffix(e.Name(), snapshotExt))
		if err != nil {
			s.logger.Warn("skipping unreadable snapshot", "file", e.Name(), "err", err)
			continue
		}
		info := snap.Info
		if fi, err := e.Info(); err == nil {
			info.Size = fi.Size()
		}
		s.infos[info.ID] = &info
	}
	return nil
}

func (s *LocalStore) path(id string) string {
	return filepath.Join(s.dir, id+snapshotExt)
}

func (s *LocalStore) read(id string) (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Info.ID == "" {
		snap.Info.ID = id
	}
	return &snap, nil
}

func (s *LocalStore) write(snap *models.Snapshot) (int64, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encoding snapshot: %w", err)
	}
	tmp := s.path(snap.Info.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return 0, fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path(snap.Info.ID)); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("writing snapshot: %w", err)
	}
	return int64(len(data)), nil
}

// Save writes a new snapshot.
func (s *LocalStore) Save(_ context.Context, name string, containers []models.Container) (*models.SnapshotInfo, error) {
	if containers == nil {
		containers = []models.Container{}
	}
	snap := &models.Snapshot{
		Info: models.SnapshotInfo{
			ID:             uuid.New().String(),
			Name:           name,
			ContainerCount: len(containers),
			CreatedAt:      time.Now().UTC(),
		},
		Containers: containers,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	size, err := s.write(snap)
	if err != nil {
		return nil, err
	}
	info := snap.Info
	info.Size = size
	s.infos[info.ID] = &info

	out := info
	return &out, nil
}

// Get reads a snapshot with its containers.
func (s *LocalStore) Get(_ context.Context, id string) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.infos[id]
	if !ok {
		return nil, notFound(id)
	}
	snap, err := s.read(id)
	if err != nil {
		return nil, err
	}
	snap.Info = *info
	return snap, nil
}

// List returns the most recent snapshots. A limit <= 0 returns all.
func (s *LocalStore) List(_ context.Context, limit int) ([]*models.SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.SnapshotInfo, 0, len(s.infos))
	for _, info := range s.infos {
		cp := *info
		list = append(list, &cp)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes a snapshot.
func (s *LocalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.infos[id]; !ok {
		return notFound(id)
	}
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	delete(s.infos, id)
	return nil
}

// Rename updates the display name of a snapshot.
func (s *LocalStore) Rename(_ context.Context, id string, newName string) (*models.SnapshotInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.infos[id]
	if !ok {
		return nil, notFound(id)
	}
	snap, err := s.read(id)
	if err != nil {
		return nil, err
	}
	snap.Info = *info
	snap.Info.Name = newName
	size, err := s.write(snap)
	if err != nil {
		return nil, err
	}
	info.Name = newName
	info.Size = size

	out := *info
	return &out, nil
}

// Close is a no-op; files are written synchronously.
func (s *LocalStore) Close() error { return nil }
