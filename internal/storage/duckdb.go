package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/layout-editor/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
)

// DuckOptions tunes the DuckDB backend.
type DuckOptions struct {
	Threads     int
	MemoryLimit string // e.g. "256MB"
}

// DuckStore implements Store in a single DuckDB file. Containers are kept as
// a msgpack payload next to the queryable metadata columns.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

// DuckFileName is the database file created inside the snapshot directory.
const DuckFileName = "snapshots.duckdb"

// NewDuckStore opens (or creates) the snapshot database in dir.
func NewDuckStore(dir string, opts DuckOptions, logger *log.Logger) (*DuckStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	dbPath := filepath.Join(dir, DuckFileName)

	pragmas := []string{"PRAGMA enable_progress_bar=false"}
	if opts.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
	}
	if opts.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit))
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id              VARCHAR PRIMARY KEY,
			name            VARCHAR NOT NULL,
			created_at      TIMESTAMP NOT NULL,
			container_count INTEGER NOT NULL,
			size            BIGINT NOT NULL,
			payload         BLOB NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Debug("snapshot database ready", "path", dbPath)
	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Save inserts a new snapshot.
func (ds *DuckStore) Save(ctx context.Context, name string, containers []models.Container) (*models.SnapshotInfo, error) {
	payload, err := encodeContainers(containers)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	info := &models.SnapshotInfo{
		ID:             uuid.New().String(),
		Name:           name,
		Size:           int64(len(payload)),
		ContainerCount: len(containers),
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err = ds.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, created_at, container_count, size, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, info.Name, info.CreatedAt, info.ContainerCount, info.Size, payload)
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}
	return info, nil
}

// Get reads a snapshot with its containers.
func (ds *DuckStore) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	var snap models.Snapshot
	var payload []byte
	err := ds.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, container_count, size, payload FROM snapshots WHERE id = ?`, id,
	).Scan(&snap.Info.ID, &snap.Info.Name, &snap.Info.CreatedAt, &snap.Info.ContainerCount, &snap.Info.Size, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	snap.Info.CreatedAt = snap.Info.CreatedAt.UTC()
	snap.Containers, err = decodeContainers(payload)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// List returns the most recent snapshots. A limit <= 0 returns all.
func (ds *DuckStore) List(ctx context.Context, limit int) ([]*models.SnapshotInfo, error) {
	query := `SELECT id, name, created_at, container_count, size FROM snapshots ORDER BY created_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	list := []*models.SnapshotInfo{}
	for rows.Next() {
		var info models.SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.CreatedAt, &info.ContainerCount, &info.Size); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		info.CreatedAt = info.CreatedAt.UTC()
		list = append(list, &info)
	}
	return list, rows.Err()
}

// Delete removes a snapshot.
func (ds *DuckStore) Delete(ctx context.Context, id string) error {
	res, err := ds.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound(id)
	}
	return nil
}

// Rename updates the display name of a snapshot.
func (ds *DuckStore) Rename(ctx context.Context, id string, newName string) (*models.SnapshotInfo, error) {
	res, err := ds.db.ExecContext(ctx, `UPDATE snapshots SET name = ? WHERE id = ?`, newName, id)
	if err != nil {
		return nil, fmt.Errorf("renaming snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound(id)
	}

	var info models.SnapshotInfo
	err = ds.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, container_count, size FROM snapshots WHERE id = ?`, id,
	).Scan(&info.ID, &info.Name, &info.CreatedAt, &info.ContainerCount, &info.Size)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	info.CreatedAt = info.CreatedAt.UTC()
	return &info, nil
}

// Close closes the database. The file is kept.
func (ds *DuckStore) Close() error {
	if ds.db == nil {
		return nil
	}
	return ds.db.Close()
}
