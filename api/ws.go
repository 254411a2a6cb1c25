package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Observer hub is local-only; accept any origin.
		return true
	},
}

// StateMessage is the envelope pushed to observer clients.
type StateMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan StateMessage
}

// Hub fans live map state out to connected observers. A viewer that
// cannot keep up is dropped rather than allowed to block the editor.
type Hub struct {
	mu         sync.Mutex
	clients    map[*wsClient]bool
	broadcast  chan StateMessage
	register   chan *wsClient
	unregister chan *wsClient
}

// NewHub returns a hub ready to run.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan StateMessage, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

// Serve starts the hub loop and listens for observer connections on
// addr. Blocks; run in a goroutine.
func (h *Hub) Serve(addr string) error {
	go h.run()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	log.Printf("[API] observer hub listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// Broadcast queues a state message for every connected observer.
func (h *Hub) Broadcast(msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("[API] broadcast encode failed: %v", err)
		return
	}
	msg := StateMessage{Type: msgType, Data: raw, Timestamp: time.Now()}
	select {
	case h.broadcast <- msg:
	default:
		// Hub backlog full; drop the update, the next one supersedes it.
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			ack := StateMessage{Type: "ack", Data: json.RawMessage(`"connected"`), Timestamp: time.Now()}
			select {
			case client.send <- ack:
			default:
				h.drop(client)
			}

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) drop(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client] {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[API] websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan StateMessage, 64)}
	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *wsClient) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		// Observers are read-only; drain and discard.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
