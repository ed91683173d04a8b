package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/models"
)

// layoutFile is the on-disk form of a layout. A bare JSON array of
// containers is accepted as well.
type layoutFile struct {
	Containers []models.Container `json:"containers"`
}

// readLayout loads a layout file into a fresh store, which rejects broken
// hierarchies.
func readLayout(path string) (*canvas.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	var containers []models.Container
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &containers)
	} else {
		var f layoutFile
		err = json.Unmarshal(trimmed, &f)
		containers = f.Containers
	}
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}

	store := canvas.New()
	if err := store.Load(containers); err != nil {
		return nil, fmt.Errorf("load layout %s: %w", path, err)
	}
	return store, nil
}

func writeLayout(w io.Writer, containers []models.Container) error {
	if containers == nil {
		containers = []models.Container{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(layoutFile{Containers: containers})
}

// output returns the destination for path, or stdout when path is empty.
// The returned close function must be called.
func output(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
