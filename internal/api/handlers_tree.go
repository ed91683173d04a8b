// handlers_tree.go - Tree-view projection handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/treeview"
)

// TreeHandlerImpl implements the TreeHandler interface
type TreeHandlerImpl struct {
	workspaces WorkspaceManager
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(workspaces WorkspaceManager) TreeHandler {
	return &TreeHandlerImpl{workspaces: workspaces}
}

type treeResponse struct {
	Tree    []treeview.Node `json:"tree"`
	Version uint64          `json:"version"`
}

type applyTreeRequest struct {
	Tree []treeview.Node `json:"tree"`
}

// HandleGetTree returns the nested forest for the tree widget
func (h *TreeHandlerImpl) HandleGetTree(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, treeResponse{
		Tree:    treeview.ToTreeView(ws.Canvas.All()),
		Version: ws.Canvas.Version(),
	})
}

// HandleApplyTree applies an edited forest as one transaction
func (h *TreeHandlerImpl) HandleApplyTree(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	var req applyTreeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Tree == nil {
		return NewValidationError("tree")
	}

	if err := treeview.Apply(ws.Canvas, req.Tree); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, treeResponse{
		Tree:    treeview.ToTreeView(ws.Canvas.All()),
		Version: ws.Canvas.Version(),
	})
}
