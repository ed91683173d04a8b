package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDevicePresets(t *testing.T) {
	content := `
default: phone
devices:
  - id: phone
    name: "Phone"
    width: 390
    height: 844
  - id: wall
    width: 3840
    height: 2160
`
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	presets, err := ParseDevicePresets(path)
	if err != nil {
		t.Fatalf("ParseDevicePresets failed: %v", err)
	}

	if presets.Default != "phone" {
		t.Errorf("expected default phone, got %s", presets.Default)
	}
	if len(presets.Devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(presets.Devices))
	}
	wall, ok := presets.Find("wall")
	if !ok {
		t.Fatal("wall preset not found")
	}
	if wall.Name != "wall" {
		t.Errorf("expected name to default to id, got %q", wall.Name)
	}
	if wall.Width != 3840 || wall.Height != 2160 {
		t.Errorf("unexpected size %vx%v", wall.Width, wall.Height)
	}
}

func TestParseDevicePresetsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "devices: []", "no devices"},
		{"missing id", "devices:\n  - width: 10\n    height: 10", "has no id"},
		{"duplicate", "devices:\n  - {id: a, width: 1, height: 1}\n  - {id: a, width: 2, height: 2}", "defined twice"},
		{"zero size", "devices:\n  - {id: a, width: 0, height: 10}", "positive size"},
		{"bad default", "default: b\ndevices:\n  - {id: a, width: 1, height: 1}", "not defined"},
		{"bad yaml", "devices: [", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDevicePresetsFromReader(strings.NewReader(tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadDevicePresetsBuiltin(t *testing.T) {
	presets, err := LoadDevicePresets("")
	if err != nil {
		t.Fatal(err)
	}
	if presets.Default != "desktop" {
		t.Errorf("expected desktop default, got %s", presets.Default)
	}
	if _, ok := presets.Find("mobileS"); !ok {
		t.Error("mobileS preset missing")
	}

	if _, err := LoadDevicePresets(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
