package models

// DevicePreset is a named canvas size.
type DevicePreset struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// DevicePresets mirrors the YAML presets file format.
type DevicePresets struct {
	Default string         `json:"default" yaml:"default"`
	Devices []DevicePreset `json:"devices" yaml:"devices"`
}

// BuiltinDevicePresets returns the presets used when no presets file is configured.
func BuiltinDevicePresets() DevicePresets {
	return DevicePresets{
		Default: "desktop",
		Devices: []DevicePreset{
			{ID: "mobileS", Name: "Mobile S", Width: 320, Height: 568},
			{ID: "mobileM", Name: "Mobile M", Width: 375, Height: 667},
			{ID: "mobileL", Name: "Mobile L", Width: 425, Height: 896},
			{ID: "tablet", Name: "Tablet", Width: 768, Height: 1024},
			{ID: "laptop", Name: "Laptop", Width: 1024, Height: 768},
			{ID: "desktop", Name: "Desktop", Width: 1440, Height: 900},
		},
	}
}

// Find returns the preset with the given id.
func (p DevicePresets) Find(id string) (DevicePreset, bool) {
	for _, d := range p.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return DevicePreset{}, false
}

// ViewportState is the device and zoom state of a workspace.
type ViewportState struct {
	Device       string  `json:"device"`
	ZoomLevel    float64 `json:"zoomLevel"`
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
}

// SelectionState is the UI selection of a workspace.
type SelectionState struct {
	SelectedID           string `json:"selectedId,omitempty"`
	PropertyPanelVisible bool   `json:"propertyPanelVisible"`
}
