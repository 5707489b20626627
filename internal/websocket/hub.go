package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"procurement/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is pushed to the clients allowed to see a request when it changes.
type Event struct {
	Type        string `json:"type"` // request.submitted, request.approved, request.rejected
	RequestID   string `json:"request_id"`
	Status      string `json:"status"`
	Actor       string `json:"actor"`
	SubmittedBy string `json:"submitted_by"`
}

// Audience reports whether viewerID may see a request submitted by submittedBy.
type Audience func(viewerID, submittedBy string) bool

type delivery struct {
	submittedBy string
	payload     []byte
}

// Client represents a single connected WebSocket client
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

// Hub maintains the set of active clients and routes request events to the
// submitter and to clients the audience admits.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	canSee     Audience
	mu         sync.Mutex
}

// NewHub returns a hub that only admits the submitter when canSee is nil.
func NewHub(canSee Audience) *Hub {
	return &Hub{
		canSee:     canSee,
		broadcast:  make(chan delivery, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run dispatches register, unregister and broadcast traffic until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected: %s", client.UserID)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Printf("WebSocket client disconnected: %s", client.UserID)
			}
			h.mu.Unlock()
		case d := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !h.admits(client.UserID, d.submittedBy) {
					continue
				}
				select {
				case client.Send <- d.payload:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) admits(viewerID, submittedBy string) bool {
	if viewerID == "" {
		return false
	}
	if viewerID == submittedBy {
		return true
	}
	return h.canSee != nil && h.canSee(viewerID, submittedBy)
}

// Publish queues an event for delivery. It never blocks the caller; when the
// queue is full the event is dropped.
func (h *Hub) Publish(evt Event) {
	msg, err := json.Marshal(evt)
	if err != nil {
		log.Printf("websocket: marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- delivery{submittedBy: evt.SubmittedBy, payload: msg}:
	default:
		log.Printf("websocket: broadcast queue full, dropping %s for %s", evt.Type, evt.RequestID)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		_, _ = w.Write(message)

		n := len(c.Send)
		for i := 0; i < n; i++ {
			_, _ = w.Write([]byte{'\n'})
			_, _ = w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump only drains the connection so close frames are noticed.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}
	}
}

// ServeWs upgrades an authenticated request. The token comes from the
// access_token cookie or the token query parameter.
func ServeWs(hub *Hub, tokens auth.Tokens, c *gin.Context) {
	tokenString, err := c.Cookie("access_token")
	if err != nil || tokenString == "" {
		tokenString = c.Query("token")
	}
	claims, err := tokens.Parse(tokenString)
	if err != nil {
		log.Println("WebSocket connection rejected:", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), UserID: claims.Subject}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
