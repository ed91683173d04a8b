package workspace

import (
	"sync"

	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/models"
)

// Selection is the UI selection of one workspace: at most one container
// plus the visibility of the property panel.
type Selection struct {
	mu     sync.RWMutex
	state  models.SelectionState
	canvas *canvas.Store
	cancel func()
}

// NewSelection creates an empty selection over store. The selection clears
// itself when the selected container is removed.
func NewSelection(store *canvas.Store) *Selection {
	s := &Selection{canvas: store}
	s.cancel = store.Subscribe(func(canvas.Event) { s.dropIfGone() })
	return s
}

// Select selects id and shows the property panel. An empty id clears the
// selection. Unknown ids are ignored and reported as false.
func (s *Selection) Select(id string) bool {
	if id == "" {
		s.Clear()
		return true
	}
	// Checked under s.mu so a concurrent Remove either fails this lookup or
	// clears the selection afterwards in dropIfGone.
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.canvas.Get(id); !ok {
		return false
	}
	s.state.SelectedID = id
	s.state.PropertyPanelVisible = true
	return true
}

// Clear drops the selection. The property panel keeps its visibility.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedID = ""
}

// TogglePropertyPanel flips the panel, or sets it when visible is non-nil.
func (s *Selection) TogglePropertyPanel(visible *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if visible != nil {
		s.state.PropertyPanelVisible = *visible
	} else {
		s.state.PropertyPanelVisible = !s.state.PropertyPanelVisible
	}
	return s.state.PropertyPanelVisible
}

// State returns the current selection.
func (s *Selection) State() models.SelectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Selection) dropIfGone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.SelectedID == "" {
		return
	}
	if _, ok := s.canvas.Get(s.state.SelectedID); !ok {
		s.state.SelectedID = ""
	}
}

// Close stops following canvas changes.
func (s *Selection) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
