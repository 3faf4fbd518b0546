package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/rifanet/rifa-services/internal/comm"
	"github.com/rifanet/rifa-services/internal/notifysvc/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub *ws.Hub
}

func NewHandler(hub *ws.Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("websocket upgrade failed: %v", err)
		return
	}

	id, err := uuid.NewV4()
	if err != nil {
		log.Errorf("unable to create socket id: %v", err)
		conn.Close()
		return
	}
	socketId := id.String()

	h.hub.StoreConnection(socketId, conn)
	log.Infof("socket connected: %s", socketId)

	go h.handleConnection(socketId, conn)
}

func (h *Handler) handleConnection(socketId string, conn *websocket.Conn) {
	defer h.hub.HandleDisconnect(socketId)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("socket %s read error: %v", socketId, err)
			}
			return
		}

		var msg comm.WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendErrorToClient(conn, "invalid message")
			continue
		}

		switch msg.Type {
		case "watch-game":
			var req comm.WatchRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil || req.GameID <= 0 {
				h.sendErrorToClient(conn, "invalid watch request")
				continue
			}
			h.hub.Watch(socketId, req.GameID)
		case "unwatch-game":
			var req comm.WatchRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil || req.GameID <= 0 {
				h.sendErrorToClient(conn, "invalid watch request")
				continue
			}
			h.hub.Unwatch(socketId, req.GameID)
		default:
			h.sendErrorToClient(conn, "unknown message type")
		}
	}
}

func (h *Handler) sendErrorToClient(conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(map[string]string{"type": "error", "message": message})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Warnf("unable to send error to client: %v", err)
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("notify service is healthy"))
}
