// Package storage persists canvas snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/layout-editor/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned for an unknown snapshot id.
var ErrNotFound = errors.New("snapshot not found")

// Store defines the interface for snapshot storage.
type Store interface {
	Save(ctx context.Context, name string, containers []models.Container) (*models.SnapshotInfo, error)
	Get(ctx context.Context, id string) (*models.Snapshot, error)
	List(ctx context.Context, limit int) ([]*models.SnapshotInfo, error)
	Delete(ctx context.Context, id string) error
	Rename(ctx context.Context, id string, newName string) (*models.SnapshotInfo, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendDuckDB = "duckdb"
)

// Options configures Open.
type Options struct {
	Backend   string
	Directory string
	DuckDB    DuckOptions
	Logger    *log.Logger
}

// Open creates the configured snapshot store.
func Open(opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewLocalStore(opts.Directory, logger)
	case BackendDuckDB:
		return NewDuckStore(opts.Directory, opts.DuckDB, logger)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", opts.Backend)
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// encodeContainers is the compact payload format shared by binary backends.
func encodeContainers(containers []models.Container) ([]byte, error) {
	if containers == nil {
		containers = []models.Container{}
	}
	return msgpack.Marshal(containers)
}

func decodeContainers(data []byte) ([]models.Container, error) {
	var containers []models.Container
	if err := msgpack.Unmarshal(data, &containers); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	for i := range containers {
		if containers[i].Children == nil {
			containers[i].Children = []string{}
		}
	}
	return containers, nil
}
