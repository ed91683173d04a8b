// handlers_snapshot.go - Snapshot save/restore handlers
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/storage"
)

// SnapshotHandlerImpl implements the SnapshotHandler interface
type SnapshotHandlerImpl struct {
	workspaces WorkspaceManager
	store      storage.Store
	logger     *log.Logger
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(workspaces WorkspaceManager, store storage.Store, logger *log.Logger) SnapshotHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &SnapshotHandlerImpl{workspaces: workspaces, store: store, logger: logger}
}

type saveSnapshotRequest struct {
	Name string `json:"name"`
}

type renameSnapshotRequest struct {
	Name string `json:"name"`
}

// HandleListSnapshots lists saved snapshots, newest first
func (h *SnapshotHandlerImpl) HandleListSnapshots(c echo.Context) error {
	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			return NewValidationError("limit")
		}
		limit = parsed
	}

	snaps, err := h.store.List(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to list snapshots", err)
	}
	return c.JSON(http.StatusOK, snaps)
}

// HandleSaveSnapshot stores a copy of the workspace's containers
func (h *SnapshotHandlerImpl) HandleSaveSnapshot(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var req saveSnapshotRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return NewBadRequestError("invalid request body", err)
		}
	}
	if req.Name == "" {
		req.Name = ws.Name + " " + time.Now().Format("2006-01-02 15:04:05")
	}

	info, err := h.store.Save(c.Request().Context(), req.Name, ws.Canvas.All())
	if err != nil {
		return NewInternalError("failed to save snapshot", err)
	}
	h.logger.Info("snapshot saved", "id", info.ID, "containers", info.ContainerCount)
	return c.JSON(http.StatusCreated, info)
}

// HandleRestoreSnapshot replaces the workspace's containers with a snapshot
func (h *SnapshotHandlerImpl) HandleRestoreSnapshot(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	id := c.Param("snap")
	snap, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		if apiErr := fromDomainError(err); apiErr != nil {
			return apiErr
		}
		return NewInternalError("failed to read snapshot", err)
	}

	if err := ws.Canvas.Load(snap.Containers); err != nil {
		return NewBadRequestError("snapshot is not a consistent layout", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"snapshot": snap.Info,
		"version":  ws.Canvas.Version(),
	})
}

// HandleRenameSnapshot changes the display name of a snapshot
func (h *SnapshotHandlerImpl) HandleRenameSnapshot(c echo.Context) error {
	id := c.Param("snap")

	var req renameSnapshotRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(c.Request().Context(), id, req.Name)
	if err != nil {
		if apiErr := fromDomainError(err); apiErr != nil {
			return apiErr
		}
		return NewInternalError("failed to rename snapshot", err)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteSnapshot removes a snapshot
func (h *SnapshotHandlerImpl) HandleDeleteSnapshot(c echo.Context) error {
	id := c.Param("snap")
	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		if apiErr := fromDomainError(err); apiErr != nil {
			return apiErr
		}
		return NewInternalError("failed to delete snapshot", err)
	}
	return c.NoContent(http.StatusNoContent)
}
