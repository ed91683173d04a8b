// handlers_canvas.go - Container store handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// CanvasHandlerImpl implements the CanvasHandler interface
type CanvasHandlerImpl struct {
	workspaces WorkspaceManager
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(workspaces WorkspaceManager) CanvasHandler {
	return &CanvasHandlerImpl{workspaces: workspaces}
}

// addContainerRequest is a patch plus an optional caller-chosen id.
type addContainerRequest struct {
	ID string `json:"id"`
	models.Patch
}

type nestRequest struct {
	ParentID string `json:"parentId"`
}

// changedResponse reports whether a mutation changed anything. Unknown ids
// are not errors: the store treats them as no-ops.
type changedResponse struct {
	Changed bool   `json:"changed"`
	Version uint64 `json:"version"`
}

type listContainersResponse struct {
	Containers []models.Container `json:"containers"`
	Version    uint64             `json:"version"`
}

// HandleListContainers returns all containers in insertion order, or only
// the roots with ?roots=true
func (h *CanvasHandlerImpl) HandleListContainers(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	containers := ws.Canvas.All()
	if roots, _ := strconv.ParseBool(c.QueryParam("roots")); roots {
		containers = ws.Canvas.Roots()
	}
	return c.JSON(http.StatusOK, listContainersResponse{
		Containers: containers,
		Version:    ws.Canvas.Version(),
	})
}

// HandleListContainersMsgpack returns all containers as a msgpack array
func (h *CanvasHandlerImpl) HandleListContainersMsgpack(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(ws.Canvas.All())
	if err != nil {
		return NewInternalError("failed to encode containers", err)
	}
	c.Response().Header().Set("X-Canvas-Version", strconv.FormatUint(ws.Canvas.Version(), 10))
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleAddContainer creates a container from the defaults merged with the body
func (h *CanvasHandlerImpl) HandleAddContainer(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var req addContainerRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return NewBadRequestError("invalid request body", err)
		}
	}
	if req.Children != nil {
		return NewBadRequestError("children cannot be set on a new container", nil)
	}

	id, err := ws.Canvas.Add(req.ID, req.Patch)
	if err != nil {
		return err
	}
	created, _ := ws.Canvas.Get(id)
	return c.JSON(http.StatusCreated, created)
}

// HandleGetContainer returns one container
func (h *CanvasHandlerImpl) HandleGetContainer(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	id := c.Param("id")
	container, ok := ws.Canvas.Get(id)
	if !ok {
		return NewNotFoundError("container", id)
	}
	return c.JSON(http.StatusOK, container)
}

// HandleUpdateContainer merges the body into a container
func (h *CanvasHandlerImpl) HandleUpdateContainer(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var patch models.Patch
	if err := c.Bind(&patch); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if patch.IsStructural() {
		return NewBadRequestError("use nest, unnest or the tree endpoint to change the hierarchy", nil)
	}

	changed := ws.Canvas.Update(c.Param("id"), patch)
	return c.JSON(http.StatusOK, changedResponse{Changed: changed, Version: ws.Canvas.Version()})
}

// HandleRemoveContainer deletes a container and its subtree
func (h *CanvasHandlerImpl) HandleRemoveContainer(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	changed := ws.Canvas.Remove(c.Param("id"))
	return c.JSON(http.StatusOK, changedResponse{Changed: changed, Version: ws.Canvas.Version()})
}

// HandleGetChildren returns the direct children in the parent's order
func (h *CanvasHandlerImpl) HandleGetChildren(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ws.Canvas.Children(c.Param("id")))
}

// HandleGetPosition returns the canvas-space position of a container
func (h *CanvasHandlerImpl) HandleGetPosition(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if _, ok := ws.Canvas.Get(id); !ok {
		return NewNotFoundError("container", id)
	}
	pos, err := ws.Canvas.AbsolutePosition(id)
	if err != nil {
		return NewInternalError("failed to resolve position", err)
	}
	return c.JSON(http.StatusOK, pos)
}

// HandleNest moves a container under a new parent, keeping it in place on screen
func (h *CanvasHandlerImpl) HandleNest(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var req nestRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.ParentID == "" {
		return NewValidationError("parentId")
	}

	changed := ws.Canvas.Nest(c.Param("id"), req.ParentID)
	return c.JSON(http.StatusOK, changedResponse{Changed: changed, Version: ws.Canvas.Version()})
}

// HandleUnnest detaches a container to the root level, keeping it in place
func (h *CanvasHandlerImpl) HandleUnnest(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	changed := ws.Canvas.Unnest(c.Param("id"))
	return c.JSON(http.StatusOK, changedResponse{Changed: changed, Version: ws.Canvas.Version()})
}
