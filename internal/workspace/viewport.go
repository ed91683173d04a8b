package workspace

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/layout-editor/backend/internal/models"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	ZoomStep = 0.1
)

// ErrUnknownDevice is returned when selecting a device that has no preset.
var ErrUnknownDevice = errors.New("unknown device preset")

// Viewport is the device preset and zoom level the canvas is shown at.
type Viewport struct {
	mu      sync.RWMutex
	presets models.DevicePresets
	state   models.ViewportState
}

// NewViewport starts at the presets' default device and zoom 1. If the
// default is missing, the first preset is used.
func NewViewport(presets models.DevicePresets) *Viewport {
	if len(presets.Devices) == 0 {
		presets = models.BuiltinDevicePresets()
	}
	device, ok := presets.Find(presets.Default)
	if !ok {
		device = presets.Devices[0]
	}
	return &Viewport{
		presets: presets,
		state: models.ViewportState{
			Device:       device.ID,
			ZoomLevel:    1,
			CanvasWidth:  device.Width,
			CanvasHeight: device.Height,
		},
	}
}

// Presets returns the available devices.
func (v *Viewport) Presets() models.DevicePresets {
	return v.presets
}

// SetDevice switches to a preset and adopts its canvas size.
func (v *Viewport) SetDevice(id string) (models.ViewportState, error) {
	device, ok := v.presets.Find(id)
	if !ok {
		return v.State(), fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Device = device.ID
	v.state.CanvasWidth = device.Width
	v.state.CanvasHeight = device.Height
	return v.state, nil
}

// SetZoom sets the zoom level clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(level float64) models.ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.ZoomLevel = clampZoom(level)
	return v.state
}

// ZoomIn raises the zoom by one step.
func (v *Viewport) ZoomIn() models.ViewportState {
	return v.step(ZoomStep)
}

// ZoomOut lowers the zoom by one step.
func (v *Viewport) ZoomOut() models.ViewportState {
	return v.step(-ZoomStep)
}

// ResetZoom returns to 100%.
func (v *Viewport) ResetZoom() models.ViewportState {
	return v.SetZoom(1)
}

func (v *Viewport) step(delta float64) models.ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.ZoomLevel = clampZoom(v.state.ZoomLevel + delta)
	return v.state
}

// State returns the current viewport.
func (v *Viewport) State() models.ViewportState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	// Keep step arithmetic on the 0.1 grid.
	z = math.Round(z*100) / 100
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
