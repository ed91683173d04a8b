// handlers_editor.go - Viewport and selection handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/workspace"
)

// EditorHandlerImpl implements the EditorHandler interface
type EditorHandlerImpl struct {
	workspaces WorkspaceManager
}

// NewEditorHandler creates a new viewport/selection handler
func NewEditorHandler(workspaces WorkspaceManager) EditorHandler {
	return &EditorHandlerImpl{workspaces: workspaces}
}

type updateViewportRequest struct {
	Device    *string  `json:"device"`
	ZoomLevel *float64 `json:"zoomLevel"`
}

type zoomRequest struct {
	Action string `json:"action"` // in | out | reset
}

type updateSelectionRequest struct {
	SelectedID           *string `json:"selectedId"`
	PropertyPanelVisible *bool   `json:"propertyPanelVisible"`
	TogglePanel          bool    `json:"togglePanel"`
}

// HandleGetViewport returns the device and zoom state
func (h *EditorHandlerImpl) HandleGetViewport(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Viewport.State())
}

// HandleUpdateViewport switches device and/or sets the zoom level
func (h *EditorHandlerImpl) HandleUpdateViewport(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var req updateViewportRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.Device != nil {
		if _, err := ws.Viewport.SetDevice(*req.Device); err != nil {
			if errors.Is(err, workspace.ErrUnknownDevice) {
				return NewNotFoundError("device", *req.Device)
			}
			return err
		}
	}
	if req.ZoomLevel != nil {
		ws.Viewport.SetZoom(*req.ZoomLevel)
	}
	return c.JSON(http.StatusOK, ws.Viewport.State())
}

// HandleZoom steps the zoom in or out, or resets it
func (h *EditorHandlerImpl) HandleZoom(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var req zoomRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	switch req.Action {
	case "in":
		return c.JSON(http.StatusOK, ws.Viewport.ZoomIn())
	case "out":
		return c.JSON(http.StatusOK, ws.Viewport.ZoomOut())
	case "reset":
		return c.JSON(http.StatusOK, ws.Viewport.ResetZoom())
	default:
		return NewValidationError("action")
	}
}

// HandleGetSelection returns the selected container and panel visibility
func (h *EditorHandlerImpl) HandleGetSelection(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Selection.State())
}

// HandleUpdateSelection selects a container and/or changes the property panel
func (h *EditorHandlerImpl) HandleUpdateSelection(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var req updateSelectionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.SelectedID != nil && !ws.Selection.Select(*req.SelectedID) {
		return NewNotFoundError("container", *req.SelectedID)
	}
	switch {
	case req.PropertyPanelVisible != nil:
		ws.Selection.TogglePropertyPanel(req.PropertyPanelVisible)
	case req.TogglePanel:
		ws.Selection.TogglePropertyPanel(nil)
	}
	return c.JSON(http.StatusOK, ws.Selection.State())
}
