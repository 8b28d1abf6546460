package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced by the CORS layer in front of the upgrade.
		return true
	},
	Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
		log.Printf("websocket upgrade error: %v, status: %d", reason, status)
	},
}

type client struct {
	userID    uint
	channelID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub fans messages out to the clients connected to each channel. All map
// mutation happens in Run; handlers only touch the register/unregister
// channels.
type Hub struct {
	svc *Service

	clients  map[*client]bool
	channels map[string]map[*client]bool

	register   chan *client
	unregister chan *client

	mu sync.RWMutex
}

func NewHub(svc *Service) *Hub {
	return &Hub{
		svc:        svc,
		clients:    make(map[*client]bool),
		channels:   make(map[string]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run is the hub's event loop; start it once with `go hub.Run()`.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			if _, ok := h.channels[c.channelID]; !ok {
				h.channels[c.channelID] = make(map[*client]bool)
			}
			h.channels[c.channelID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				if peers, ok := h.channels[c.channelID]; ok {
					delete(peers, c)
					if len(peers) == 0 {
						delete(h.channels, c.channelID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToChannel delivers a payload to every client connected to the
// channel. Clients with a full send buffer are dropped. All map mutation and
// the send-channel close stay in Run; drops are routed through unregister
// after the read lock is released.
func (h *Hub) BroadcastToChannel(channelID string, payload []byte) {
	var dropped []*client

	h.mu.RLock()
	for c := range h.channels[channelID] {
		select {
		case c.send <- payload:
		default:
			dropped = append(dropped, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range dropped {
		h.unregister <- c
	}
}

// ServeWs upgrades an authenticated request to a websocket connection. The
// JWT middleware has already set userID; membership of the requested channel
// is checked against the store before the upgrade.
func (h *Hub) ServeWs(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	channelID := c.Query("channel_id")
	if channelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel_id is required"})
		return
	}

	ok, err := h.svc.IsMember(c.Request.Context(), channelID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify channel membership"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this channel"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	cl := &client{
		userID:    userID,
		channelID: channelID,
		conn:      conn,
		send:      make(chan []byte, 256),
	}
	h.register <- cl

	go cl.writePump()
	go cl.readPump(h)
}

type inboundMessage struct {
	Content string  `json:"content"`
	FileURL *string `json:"file_url,omitempty"`
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(8192)
	c.conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error for user %d in channel %s: %v", c.userID, c.channelID, err)
			}
			break
		}

		// The hub owns c.send and may have closed it after a broadcast drop;
		// readPump never writes to it.
		var in inboundMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Printf("chat: malformed message from user %d in channel %s: %v", c.userID, c.channelID, err)
			continue
		}

		msg := Message{
			ChannelID: c.channelID,
			SenderID:  c.userID,
			Content:   in.Content,
			FileURL:   in.FileURL,
			CreatedAt: time.Now(),
		}
		if err := h.svc.SaveMessage(context.Background(), &msg); err != nil {
			log.Printf("failed to persist chat message: %v", err)
			continue
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		h.BroadcastToChannel(c.channelID, payload)
	}
}

func (c *client) writePump() {
	pingTicker := time.NewTicker(15 * time.Second)
	defer func() {
		pingTicker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(payload)

			// Drain anything already queued into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}
