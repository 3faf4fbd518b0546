package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/rifanet/rifa-services/internal/comm"
)

// Hub tracks connected websocket clients and which games each one
// watches. Events arriving from NATS are fanned out to the watchers
// of the event's game.
type Hub struct {
	connMap sync.Map // socketId -> *websocket.Conn
	watches sync.Map // socketId -> *watchSet

	mu sync.Mutex // serializes writes per broadcast pass
}

type watchSet struct {
	mu    sync.Mutex
	games map[int64]struct{}
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) StoreConnection(socketId string, conn *websocket.Conn) {
	h.connMap.Store(socketId, conn)
	h.watches.Store(socketId, &watchSet{games: make(map[int64]struct{})})
}

func (h *Hub) GetConnection(socketId string) (*websocket.Conn, bool) {
	v, ok := h.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return v.(*websocket.Conn), true
}

// Watch subscribes a socket to a game's events.
func (h *Hub) Watch(socketId string, gameID int64) {
	v, ok := h.watches.Load(socketId)
	if !ok {
		return
	}
	ws := v.(*watchSet)
	ws.mu.Lock()
	ws.games[gameID] = struct{}{}
	ws.mu.Unlock()
}

// Unwatch removes a game subscription from a socket.
func (h *Hub) Unwatch(socketId string, gameID int64) {
	v, ok := h.watches.Load(socketId)
	if !ok {
		return
	}
	ws := v.(*watchSet)
	ws.mu.Lock()
	delete(ws.games, gameID)
	ws.mu.Unlock()
}

func (h *Hub) HandleDisconnect(socketId string) {
	if conn, ok := h.GetConnection(socketId); ok && conn != nil {
		conn.Close()
	}
	h.connMap.Delete(socketId)
	h.watches.Delete(socketId)
	log.Infof("socket disconnected: %s", socketId)
}

// Broadcast delivers an event to every socket watching its game.
// Sockets with no watches get nothing; write failures drop the socket.
func (h *Hub) Broadcast(msg comm.EventMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("marshal event for broadcast: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.connMap.Range(func(key, value any) bool {
		socketId := key.(string)
		if !h.watching(socketId, msg.GameID) {
			return true
		}
		conn := value.(*websocket.Conn)
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warnf("write to socket %s failed, dropping: %v", socketId, err)
			h.connMap.Delete(socketId)
			h.watches.Delete(socketId)
			conn.Close()
		}
		return true
	})
}

func (h *Hub) watching(socketId string, gameID int64) bool {
	v, ok := h.watches.Load(socketId)
	if !ok {
		return false
	}
	ws := v.(*watchSet)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	_, ok = ws.games[gameID]
	return ok
}
