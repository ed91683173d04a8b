// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/layout-editor/backend/internal/models"
	"github.com/layout-editor/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Workspaces     WorkspaceManager
	Presets        models.DevicePresets
	Snapshots      storage.Store
	Logger         *log.Logger
	MaxMessageSize int64
	Version        string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Workspace WorkspaceHandler
	Canvas    CanvasHandler
	Tree      TreeHandler
	Code      CodeHandler
	Editor    EditorHandler
	Snapshot  SnapshotHandler
	Events    EventHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Presets),
		Workspace: NewWorkspaceHandler(deps.Workspaces),
		Canvas:    NewCanvasHandler(deps.Workspaces),
		Tree:      NewTreeHandler(deps.Workspaces),
		Code:      NewCodeHandler(deps.Workspaces),
		Editor:    NewEditorHandler(deps.Workspaces),
		Snapshot:  NewSnapshotHandler(deps.Workspaces, deps.Snapshots, deps.Logger),
		Events:    NewEventHandler(deps.Workspaces, deps.MaxMessageSize, deps.Logger),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.GET("/devices", handlers.Health.HandleDevices)

	// Workspace lifecycle
	apiGroup.POST("/workspaces", handlers.Workspace.HandleCreateWorkspace)
	apiGroup.GET("/workspaces", handlers.Workspace.HandleListWorkspaces)

	wsGroup := apiGroup.Group("/workspaces/:ws")
	wsGroup.GET("", handlers.Workspace.HandleGetWorkspace)
	wsGroup.DELETE("", handlers.Workspace.HandleDeleteWorkspace)
	wsGroup.POST("/keepalive", handlers.Workspace.HandleKeepAlive)

	// Containers
	wsGroup.GET("/containers", handlers.Canvas.HandleListContainers)
	wsGroup.GET("/containers/msgpack", handlers.Canvas.HandleListContainersMsgpack)
	wsGroup.POST("/containers", handlers.Canvas.HandleAddContainer)
	wsGroup.GET("/containers/:id", handlers.Canvas.HandleGetContainer)
	wsGroup.PATCH("/containers/:id", handlers.Canvas.HandleUpdateContainer)
	wsGroup.DELETE("/containers/:id", handlers.Canvas.HandleRemoveContainer)
	wsGroup.GET("/containers/:id/children", handlers.Canvas.HandleGetChildren)
	wsGroup.GET("/containers/:id/position", handlers.Canvas.HandleGetPosition)
	wsGroup.POST("/containers/:id/nest", handlers.Canvas.HandleNest)
	wsGroup.POST("/containers/:id/unnest", handlers.Canvas.HandleUnnest)

	// Tree view
	wsGroup.GET("/tree", handlers.Tree.HandleGetTree)
	wsGroup.PUT("/tree", handlers.Tree.HandleApplyTree)

	// HTML export/import
	wsGroup.POST("/export", handlers.Code.HandleExport)
	wsGroup.GET("/export", handlers.Code.HandleExportStatus)
	wsGroup.POST("/import", handlers.Code.HandleImport)
	wsGroup.GET("/import", handlers.Code.HandleImportStatus)

	// Viewport and selection
	wsGroup.GET("/viewport", handlers.Editor.HandleGetViewport)
	wsGroup.PUT("/viewport", handlers.Editor.HandleUpdateViewport)
	wsGroup.POST("/viewport/zoom", handlers.Editor.HandleZoom)
	wsGroup.GET("/selection", handlers.Editor.HandleGetSelection)
	wsGroup.PUT("/selection", handlers.Editor.HandleUpdateSelection)

	// Snapshots
	apiGroup.GET("/snapshots", handlers.Snapshot.HandleListSnapshots)
	apiGroup.PUT("/snapshots/:snap", handlers.Snapshot.HandleRenameSnapshot)
	apiGroup.DELETE("/snapshots/:snap", handlers.Snapshot.HandleDeleteSnapshot)
	wsGroup.POST("/snapshots", handlers.Snapshot.HandleSaveSnapshot)
	wsGroup.POST("/snapshots/:snap/restore", handlers.Snapshot.HandleRestoreSnapshot)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/workspaces/:ws/ws", handlers.Events.HandleWebSocket)
}

// MiddlewareOptions selects the optional middleware
type MiddlewareOptions struct {
	Logger         *log.Logger
	RequestLogging bool
	EnableCORS     bool
	AllowOrigins   string
	BodyLimit      string
	Debug          bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	e.HTTPErrorHandler = ErrorHandler(opts.Debug)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 * 1024,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered", "path", c.Request().URL.Path, "err", err)
			return err
		},
	}))

	if opts.RequestLogging {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return path == "/api/health" || strings.HasSuffix(path, "/keepalive") || strings.HasSuffix(path, "/ws")
			},
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogError:   true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				if v.Error != nil {
					logger.Warn("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "err", v.Error)
					return nil
				}
				logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
				return nil
			},
		}))
	}

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if opts.EnableCORS {
		origins := strings.Split(opts.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
