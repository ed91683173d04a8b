// handlers_workspace.go - Workspace lifecycle handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/workspace"
)

// WorkspaceHandlerImpl implements the WorkspaceHandler interface
type WorkspaceHandlerImpl struct {
	workspaces WorkspaceManager
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaces WorkspaceManager) WorkspaceHandler {
	return &WorkspaceHandlerImpl{workspaces: workspaces}
}

type createWorkspaceRequest struct {
	Name string `json:"name"`
}

// HandleCreateWorkspace opens a new empty workspace
func (h *WorkspaceHandlerImpl) HandleCreateWorkspace(c echo.Context) error {
	var req createWorkspaceRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return NewBadRequestError("invalid request body", err)
		}
	}

	ws, err := h.workspaces.Create(req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ws.Info())
}

// HandleListWorkspaces lists open workspaces, oldest first
func (h *WorkspaceHandlerImpl) HandleListWorkspaces(c echo.Context) error {
	return c.JSON(http.StatusOK, h.workspaces.List())
}

// HandleGetWorkspace returns one workspace summary
func (h *WorkspaceHandlerImpl) HandleGetWorkspace(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Info())
}

// HandleDeleteWorkspace closes a workspace and drops its state
func (h *WorkspaceHandlerImpl) HandleDeleteWorkspace(c echo.Context) error {
	id := c.Param("ws")
	if !h.workspaces.Delete(id) {
		return NewNotFoundError("workspace", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleKeepAlive refreshes the idle timer of a workspace
func (h *WorkspaceHandlerImpl) HandleKeepAlive(c echo.Context) error {
	id := c.Param("ws")
	if !h.workspaces.Touch(id) {
		return NewNotFoundError("workspace", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// lookupWorkspace resolves the :ws path parameter and marks the workspace used.
func lookupWorkspace(c echo.Context, workspaces WorkspaceManager) (*workspace.Workspace, error) {
	id := c.Param("ws")
	if id == "" {
		return nil, NewValidationError("ws")
	}
	ws, err := workspaces.Get(id)
	if err != nil {
		return nil, NewNotFoundError("workspace", id)
	}
	return ws, nil
}
