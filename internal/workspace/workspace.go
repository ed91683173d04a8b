// Package workspace holds the per-editor state: one container store with its
// selection, viewport, export and import trackers.
package workspace

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/codegen"
	"github.com/layout-editor/backend/internal/importer"
	"github.com/layout-editor/backend/internal/models"
)

// Workspace is one open layout.
type Workspace struct {
	ID        string
	Name      string
	CreatedAt time.Time

	Canvas    *canvas.Store
	Selection *Selection
	Viewport  *Viewport
	Generator *codegen.Generator
	Importer  *importer.Importer

	mu           sync.Mutex
	lastAccessed time.Time
}

// Info is the JSON summary of a workspace.
type Info struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ContainerCount int       `json:"containerCount"`
	Version        uint64    `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessed   time.Time `json:"lastAccessed"`
}

func newWorkspace(id, name string, defaults models.Container, presets models.DevicePresets, logger *log.Logger) *Workspace {
	logger = logger.With("workspace", shortID(id))
	store := canvas.New(canvas.WithDefaults(defaults), canvas.WithLogger(logger))
	now := time.Now()
	return &Workspace{
		ID:           id,
		Name:         name,
		CreatedAt:    now,
		Canvas:       store,
		Selection:    NewSelection(store),
		Viewport:     NewViewport(presets),
		Generator:    codegen.NewGenerator(logger),
		Importer:     importer.NewImporter(logger),
		lastAccessed: now,
	}
}

// Touch marks the workspace as in use.
func (w *Workspace) Touch() {
	w.mu.Lock()
	w.lastAccessed = time.Now()
	w.mu.Unlock()
}

// LastAccessed returns when the workspace was last used.
func (w *Workspace) LastAccessed() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastAccessed
}

// Info summarizes the workspace.
func (w *Workspace) Info() Info {
	return Info{
		ID:             w.ID,
		Name:           w.Name,
		ContainerCount: w.Canvas.Len(),
		Version:        w.Canvas.Version(),
		CreatedAt:      w.CreatedAt,
		LastAccessed:   w.LastAccessed(),
	}
}

// Close releases the workspace's subscriptions.
func (w *Workspace) Close() {
	w.Selection.Close()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
