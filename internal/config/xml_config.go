// Package config provides XML-based configuration management for the layout editor backend.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/layout-editor/backend/internal/models"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"LayoutEditor"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Workspace lifecycle
	Workspace WorkspaceConfig `xml:"Workspace"`

	// Defaults for new containers
	Canvas CanvasConfig `xml:"Canvas"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains snapshot storage settings
type StorageConfig struct {
	DataDirectory      string `xml:"DataDirectory"`
	SnapshotsDirectory string `xml:"SnapshotsDirectory"`
	SnapshotBackend    string `xml:"SnapshotBackend"` // file | duckdb
	DevicePresetsFile  string `xml:"DevicePresetsFile"`
}

// WorkspaceConfig controls how many editors may be open and when idle ones go away
type WorkspaceConfig struct {
	MaxWorkspaces          int `xml:"MaxWorkspaces"`
	TimeoutMinutes         int `xml:"TimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// CanvasConfig holds the geometry and styles given to new containers
type CanvasConfig struct {
	DefaultWidth           float64 `xml:"DefaultWidth"`
	DefaultHeight          float64 `xml:"DefaultHeight"`
	DefaultBackgroundColor string  `xml:"DefaultBackgroundColor"`
	DefaultBorder          string  `xml:"DefaultBorder"`
	DefaultZIndex          int     `xml:"DefaultZIndex"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel                string `xml:"LogLevel"`
	EnableRequestLogging    bool   `xml:"EnableRequestLogging"`
	DuckDBThreads           int    `xml:"DuckDBThreads"`
	DuckDBMemoryLimit       string `xml:"DuckDBMemoryLimit"`
	WebSocketMaxMessageSize int    `xml:"WebSocketMaxMessageSizeKB"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	d := models.DefaultContainer()
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "10M",
		},
		Storage: StorageConfig{
			DataDirectory:      "./data",
			SnapshotsDirectory: "./data/snapshots",
			SnapshotBackend:    "file",
		},
		Workspace: WorkspaceConfig{
			MaxWorkspaces:          10,
			TimeoutMinutes:         30,
			CleanupIntervalMinutes: 5,
		},
		Canvas: CanvasConfig{
			DefaultWidth:           d.Width,
			DefaultHeight:          d.Height,
			DefaultBackgroundColor: d.Styles.BackgroundColor,
			DefaultBorder:          d.Styles.Border.String(),
			DefaultZIndex:          d.Styles.ZIndex,
		},
		Advanced: AdvancedConfig{
			LogLevel:                "info",
			EnableRequestLogging:    true,
			DuckDBThreads:           2,
			DuckDBMemoryLimit:       "256MB",
			WebSocketMaxMessageSize: 1024,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Layout Editor Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.SnapshotsDirectory = filepath.Join(dataDir, "snapshots")
	}

	if backend := os.Getenv("SNAPSHOT_BACKEND"); backend != "" {
		c.Storage.SnapshotBackend = backend
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// Validate rejects settings the server cannot start with.
func (c *AppConfig) Validate() error {
	switch strings.ToLower(c.Storage.SnapshotBackend) {
	case "", "file", "duckdb":
	default:
		return fmt.Errorf("invalid SnapshotBackend %q (want file or duckdb)", c.Storage.SnapshotBackend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid Port %d", c.Server.Port)
	}
	if c.Canvas.DefaultWidth < 0 || c.Canvas.DefaultHeight < 0 {
		return fmt.Errorf("canvas defaults must not be negative")
	}
	if _, err := models.ParseBorder(c.Canvas.DefaultBorder); c.Canvas.DefaultBorder != "" && err != nil {
		return fmt.Errorf("invalid DefaultBorder: %w", err)
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.SnapshotsDirectory)
	resolve(&c.Storage.DevicePresetsFile)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// WorkspaceTimeout returns how long an idle workspace is kept.
func (c *AppConfig) WorkspaceTimeout() time.Duration {
	return time.Duration(c.Workspace.TimeoutMinutes) * time.Minute
}

// CleanupInterval returns how often idle workspaces are swept.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Workspace.CleanupIntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Workspace.CleanupIntervalMinutes) * time.Minute
}

// ContainerDefaults builds the template for new containers.
func (c *AppConfig) ContainerDefaults() models.Container {
	d := models.DefaultContainer()
	if c.Canvas.DefaultWidth > 0 {
		d.Width = c.Canvas.DefaultWidth
	}
	if c.Canvas.DefaultHeight > 0 {
		d.Height = c.Canvas.DefaultHeight
	}
	if c.Canvas.DefaultBackgroundColor != "" {
		d.Styles.BackgroundColor = c.Canvas.DefaultBackgroundColor
	}
	if c.Canvas.DefaultBorder != "" {
		d.Styles.Border = models.ParseBorderOr(c.Canvas.DefaultBorder, d.Styles.Border)
	}
	if c.Canvas.DefaultZIndex != 0 {
		d.Styles.ZIndex = c.Canvas.DefaultZIndex
	}
	return d
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.SnapshotsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
