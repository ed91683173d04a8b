package workspace

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func age(ws *Workspace, d time.Duration) {
	ws.mu.Lock()
	ws.lastAccessed = time.Now().Add(-d)
	ws.mu.Unlock()
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(Options{})

	ws, err := m.Create("home page")
	require.NoError(t, err)
	assert.Equal(t, "home page", ws.Name)

	got, err := m.Get(ws.ID)
	require.NoError(t, err)
	assert.Same(t, ws, got)

	_, err = m.Get("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	unnamed, err := m.Create("")
	require.NoError(t, err)
	assert.Contains(t, unnamed.Name, "Untitled")

	infos := m.List()
	require.Len(t, infos, 2)

	assert.True(t, m.Delete(ws.ID))
	assert.False(t, m.Delete(ws.ID))
	assert.Equal(t, 1, m.Len())
}

func TestManagerUsesDefaults(t *testing.T) {
	d := models.DefaultContainer()
	d.Width, d.Height = 64, 32
	m := NewManager(Options{Defaults: d})

	ws, err := m.Create("x")
	require.NoError(t, err)
	id, err := ws.Canvas.Add("", models.Patch{})
	require.NoError(t, err)

	c, _ := ws.Canvas.Get(id)
	assert.Equal(t, 64.0, c.Width)
	assert.Equal(t, "desktop", ws.Viewport.State().Device)
}

func TestManagerEvictsIdleWhenFull(t *testing.T) {
	m := NewManager(Options{MaxWorkspaces: 2})

	a, err := m.Create("a")
	require.NoError(t, err)
	b, err := m.Create("b")
	require.NoError(t, err)

	_, err = m.Create("c")
	assert.ErrorIs(t, err, ErrTooManyWorkspaces)

	age(a, 20*time.Minute)
	age(b, 10*time.Minute)

	c, err := m.Create("c")
	require.NoError(t, err)

	_, err = m.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(b.ID)
	assert.NoError(t, err)
	_, err = m.Get(c.ID)
	assert.NoError(t, err)
}

func TestCleanupIdle(t *testing.T) {
	m := NewManager(Options{})
	stale, _ := m.Create("stale")
	recent, _ := m.Create("recent")
	fresh, _ := m.Create("fresh")

	age(stale, 2*time.Hour)
	age(recent, 10*time.Minute)

	assert.Equal(t, 1, m.CleanupIdle(30*time.Minute))

	_, err := m.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(recent.ID)
	assert.NoError(t, err)
	_, err = m.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSelection(t *testing.T) {
	store := canvas.New()
	_, err := store.Add("a", models.Patch{})
	require.NoError(t, err)
	_, err = store.Add("b", models.Patch{ParentID: models.String("a")})
	require.NoError(t, err)

	sel := NewSelection(store)
	defer sel.Close()

	assert.False(t, sel.State().PropertyPanelVisible)
	assert.False(t, sel.Select("nope"))
	assert.Empty(t, sel.State().SelectedID)

	assert.True(t, sel.Select("b"))
	assert.Equal(t, models.SelectionState{SelectedID: "b", PropertyPanelVisible: true}, sel.State())

	assert.False(t, sel.TogglePropertyPanel(nil))
	visible := true
	assert.True(t, sel.TogglePropertyPanel(&visible))

	store.Update("a", models.Patch{X: models.Float(3)})
	assert.Equal(t, "b", sel.State().SelectedID)

	store.Remove("a")
	assert.Empty(t, sel.State().SelectedID)
	assert.True(t, sel.State().PropertyPanelVisible)
}

func TestSelectionRacingRemove(t *testing.T) {
	store := canvas.New()
	sel := NewSelection(store)
	defer sel.Close()

	for i := 0; i < 200; i++ {
		_, err := store.Add("x", models.Patch{})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			sel.Select("x")
		}()
		go func() {
			defer wg.Done()
			store.Remove("x")
		}()
		wg.Wait()

		assert.Empty(t, sel.State().SelectedID, "iteration %d", i)
	}
}

func TestViewport(t *testing.T) {
	v := NewViewport(models.BuiltinDevicePresets())

	st := v.State()
	assert.Equal(t, "desktop", st.Device)
	assert.Equal(t, 1440.0, st.CanvasWidth)
	assert.Equal(t, 900.0, st.CanvasHeight)
	assert.Equal(t, 1.0, st.ZoomLevel)

	st, err := v.SetDevice("mobileM")
	require.NoError(t, err)
	assert.Equal(t, 375.0, st.CanvasWidth)
	assert.Equal(t, 667.0, st.CanvasHeight)

	_, err = v.SetDevice("watch")
	assert.ErrorIs(t, err, ErrUnknownDevice)
	assert.Equal(t, "mobileM", v.State().Device)

	tests := []struct {
		name string
		do   func() models.ViewportState
		want float64
	}{
		{"zoom in", v.ZoomIn, 1.1},
		{"zoom in again", v.ZoomIn, 1.2},
		{"zoom out", v.ZoomOut, 1.1},
		{"reset", v.ResetZoom, 1},
		{"clamp high", func() models.ViewportState { return v.SetZoom(9) }, MaxZoom},
		{"stays at max", v.ZoomIn, MaxZoom},
		{"clamp low", func() models.ViewportState { return v.SetZoom(0) }, MinZoom},
		{"stays at min", v.ZoomOut, MinZoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.do().ZoomLevel)
		})
	}
}

func TestViewportFallsBackToFirstPreset(t *testing.T) {
	v := NewViewport(models.DevicePresets{
		Default: "missing",
		Devices: []models.DevicePreset{{ID: "kiosk", Name: "Kiosk", Width: 1080, Height: 1920}},
	})
	assert.Equal(t, "kiosk", v.State().Device)
	assert.Equal(t, 1920.0, v.State().CanvasHeight)
}
