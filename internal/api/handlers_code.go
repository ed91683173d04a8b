// handlers_code.go - HTML export and import handlers
package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/models"
)

// CodeHandlerImpl implements the CodeHandler interface
type CodeHandlerImpl struct {
	workspaces WorkspaceManager
}

// NewCodeHandler creates a new export/import handler
func NewCodeHandler(workspaces WorkspaceManager) CodeHandler {
	return &CodeHandlerImpl{workspaces: workspaces}
}

type exportResponse struct {
	State       models.OperationState `json:"state"`
	HTML        string                `json:"html,omitempty"`
	GeneratedAt *time.Time            `json:"generatedAt,omitempty"`
}

type importRequest struct {
	HTML string `json:"html"`
}

type importResponse struct {
	State      models.OperationState `json:"state"`
	Containers int                   `json:"containers"`
	Roots      []string              `json:"roots"`
	Version    uint64                `json:"version"`
}

// HandleExport renders the canvas as an HTML document. With
// Accept: text/html the document itself is returned.
func (h *CodeHandlerImpl) HandleExport(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	out, err := ws.Generator.Run(ws.Canvas.All())
	if err != nil {
		return NewInternalError("code generation failed", err)
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML) {
		return c.HTML(http.StatusOK, out)
	}
	_, at := ws.Generator.Output()
	return c.JSON(http.StatusOK, exportResponse{State: ws.Generator.State(), HTML: out, GeneratedAt: &at})
}

// HandleExportStatus returns the last export status and output
func (h *CodeHandlerImpl) HandleExportStatus(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	resp := exportResponse{State: ws.Generator.State()}
	if out, at := ws.Generator.Output(); !at.IsZero() {
		resp.HTML = out
		resp.GeneratedAt = &at
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleImport replaces the canvas with containers parsed from HTML. The body
// is either JSON {"html": "..."} or raw text/html.
func (h *CodeHandlerImpl) HandleImport(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	markup, err := readMarkup(c)
	if err != nil {
		return err
	}

	res, err := ws.Importer.Import(ws.Canvas, markup)
	if err != nil {
		if apiErr := fromDomainError(err); apiErr != nil {
			return apiErr
		}
		return NewInternalError("import failed", err)
	}

	return c.JSON(http.StatusOK, importResponse{
		State:      ws.Importer.State(),
		Containers: len(res.Order),
		Roots:      res.Roots(),
		Version:    ws.Canvas.Version(),
	})
}

// HandleImportStatus returns the last import status
func (h *CodeHandlerImpl) HandleImportStatus(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws.Importer.State())
}

func readMarkup(c echo.Context) (string, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req importRequest
		if err := c.Bind(&req); err != nil {
			return "", NewBadRequestError("invalid request body", err)
		}
		if strings.TrimSpace(req.HTML) == "" {
			return "", NewValidationError("html")
		}
		return req.HTML, nil
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", NewBadRequestError("failed to read request body", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", NewValidationError("html")
	}
	return string(body), nil
}
