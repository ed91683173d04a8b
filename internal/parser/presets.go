// Package parser reads the editor's YAML data files.
package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/layout-editor/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// ParseDevicePresets parses a YAML device presets file:
//
//	default: desktop
//	devices:
//	  - id: desktop
//	    name: Desktop
//	    width: 1440
//	    height: 900
func ParseDevicePresets(filePath string) (*models.DevicePresets, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseDevicePresetsFromReader(file)
}

// ParseDevicePresetsFromReader parses presets from an io.Reader.
func ParseDevicePresetsFromReader(r io.Reader) (*models.DevicePresets, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var presets models.DevicePresets
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, err
	}
	if err := validatePresets(&presets); err != nil {
		return nil, err
	}
	return &presets, nil
}

// LoadDevicePresets returns the presets in filePath, or the built-in presets
// when filePath is empty.
func LoadDevicePresets(filePath string) (models.DevicePresets, error) {
	if filePath == "" {
		return models.BuiltinDevicePresets(), nil
	}
	presets, err := ParseDevicePresets(filePath)
	if err != nil {
		return models.DevicePresets{}, fmt.Errorf("device presets %s: %w", filePath, err)
	}
	return *presets, nil
}

func validatePresets(p *models.DevicePresets) error {
	if len(p.Devices) == 0 {
		return fmt.Errorf("no devices defined")
	}
	seen := make(map[string]struct{}, len(p.Devices))
	for i, d := range p.Devices {
		if d.ID == "" {
			return fmt.Errorf("device %d has no id", i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("device %q defined twice", d.ID)
		}
		seen[d.ID] = struct{}{}
		if d.Width <= 0 || d.Height <= 0 {
			return fmt.Errorf("device %q must have a positive size", d.ID)
		}
		if d.Name == "" {
			p.Devices[i].Name = d.ID
		}
	}
	if p.Default == "" {
		p.Default = p.Devices[0].ID
	}
	if _, ok := p.Find(p.Default); !ok {
		return fmt.Errorf("default device %q is not defined", p.Default)
	}
	return nil
}
