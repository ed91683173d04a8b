// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/workspace"
)

// HealthHandler handles health check and static catalog operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
	HandleDevices(c echo.Context) error
}

// WorkspaceHandler handles workspace lifecycle operations
type WorkspaceHandler interface {
	HandleCreateWorkspace(c echo.Context) error
	HandleListWorkspaces(c echo.Context) error
	HandleGetWorkspace(c echo.Context) error
	HandleDeleteWorkspace(c echo.Context) error
	HandleKeepAlive(c echo.Context) error
}

// CanvasHandler handles container store operations
type CanvasHandler interface {
	HandleListContainers(c echo.Context) error
	HandleListContainersMsgpack(c echo.Context) error
	HandleAddContainer(c echo.Context) error
	HandleGetContainer(c echo.Context) error
	HandleUpdateContainer(c echo.Context) error
	HandleRemoveContainer(c echo.Context) error
	HandleGetChildren(c echo.Context) error
	HandleGetPosition(c echo.Context) error
	HandleNest(c echo.Context) error
	HandleUnnest(c echo.Context) error
}

// TreeHandler handles the tree-view projection
type TreeHandler interface {
	HandleGetTree(c echo.Context) error
	HandleApplyTree(c echo.Context) error
}

// CodeHandler handles HTML export and import
type CodeHandler interface {
	HandleExport(c echo.Context) error
	HandleExportStatus(c echo.Context) error
	HandleImport(c echo.Context) error
	HandleImportStatus(c echo.Context) error
}

// EditorHandler handles viewport and selection state
type EditorHandler interface {
	HandleGetViewport(c echo.Context) error
	HandleUpdateViewport(c echo.Context) error
	HandleZoom(c echo.Context) error
	HandleGetSelection(c echo.Context) error
	HandleUpdateSelection(c echo.Context) error
}

// SnapshotHandler handles saved canvas snapshots
type SnapshotHandler interface {
	HandleListSnapshots(c echo.Context) error
	HandleSaveSnapshot(c echo.Context) error
	HandleRestoreSnapshot(c echo.Context) error
	HandleRenameSnapshot(c echo.Context) error
	HandleDeleteSnapshot(c echo.Context) error
}

// EventHandler streams canvas changes over WebSocket
type EventHandler interface {
	HandleWebSocket(c echo.Context) error
}

// WorkspaceManager defines the workspace operations handlers rely on.
// This allows mocking in tests
type WorkspaceManager interface {
	Create(name string) (*workspace.Workspace, error)
	Get(id string) (*workspace.Workspace, error)
	Touch(id string) bool
	List() []workspace.Info
	Delete(id string) bool
}
