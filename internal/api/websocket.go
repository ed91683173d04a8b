package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/treeview"
)

// WebSocket message types for the canvas event feed
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected     = "connected"
	MsgTypeCanvasChanged = "canvas:changed"
	MsgTypePong          = "pong"
	MsgTypeError         = "error"
)

const wsWriteWait = 10 * time.Second

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// CanvasChangedPayload carries the committed change plus the resulting tree.
type CanvasChangedPayload struct {
	Op      string          `json:"op,omitempty"`
	IDs     []string        `json:"ids,omitempty"`
	Version uint64          `json:"version"`
	Tree    []treeview.Node `json:"tree"`
}

// WSErrorPayload describes a rejected client frame.
type WSErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// EventHandlerImpl pushes canvas changes of one workspace to WebSocket clients
type EventHandlerImpl struct {
	workspaces     WorkspaceManager
	upgrader       websocket.Upgrader
	maxMessageSize int64
	logger         *log.Logger
}

// NewEventHandler creates a new WebSocket event handler. maxMessageSize
// bounds client frames in bytes; zero means 64KB.
func NewEventHandler(workspaces WorkspaceManager, maxMessageSize int64, logger *log.Logger) EventHandler {
	if maxMessageSize <= 0 {
		maxMessageSize = 64 * 1024
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EventHandlerImpl{
		workspaces: workspaces,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		maxMessageSize: maxMessageSize,
		logger:         logger,
	}
}

// wsClient serializes writes to one connection. gorilla allows a single
// concurrent writer only.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (cl *wsClient) send(msgType string, payload interface{}) error {
	msg := WSMessage{Type: msgType, Timestamp: time.Now().UnixMilli()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = data
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return cl.conn.WriteJSON(msg)
}

// HandleWebSocket upgrades the connection and streams canvas:changed events
// until the client disconnects
func (h *EventHandlerImpl) HandleWebSocket(c echo.Context) error {
	ws, err := lookupWorkspace(c, h.workspaces)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetReadLimit(h.maxMessageSize)

	logger := h.logger.With("workspace", ws.ID)
	logger.Debug("websocket client connected")

	client := &wsClient{conn: conn}
	store := ws.Canvas

	// Changes are coalesced: the writer always sends the latest state, so a
	// slow client never blocks a commit.
	var (
		pendingMu sync.Mutex
		pending   canvas.Event
	)
	signal := make(chan struct{}, 1)
	unsubscribe := store.Subscribe(func(ev canvas.Event) {
		pendingMu.Lock()
		pending = ev
		pendingMu.Unlock()
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)

	initial := CanvasChangedPayload{Version: store.Version(), Tree: treeview.ToTreeView(store.All())}
	if err := client.send(MsgTypeConnected, initial); err != nil {
		return nil
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-signal:
				pendingMu.Lock()
				ev := pending
				pendingMu.Unlock()
				payload := CanvasChangedPayload{
					Op:      ev.Op,
					IDs:     ev.IDs,
					Version: store.Version(),
					Tree:    treeview.ToTreeView(store.All()),
				}
				if err := client.send(MsgTypeCanvasChanged, payload); err != nil {
					logger.Debug("websocket write failed", "err", err)
					return
				}
			}
		}
	}()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket connection error", "err", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			h.workspaces.Touch(ws.ID)
			if err := client.send(MsgTypePong, nil); err != nil {
				return nil
			}
		default:
			client.send(MsgTypeError, WSErrorPayload{
				Message: "Unknown message type: " + msg.Type,
				Code:    "INVALID_TYPE",
			})
		}
	}

	logger.Debug("websocket client disconnected")
	return nil
}
