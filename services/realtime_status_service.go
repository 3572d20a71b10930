package services

import (
	"log"
	"net/http"
	"sync"
	"time"

	"crypto_tracker_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Constants for service configuration
const (
	MaxWebSocketClients   = 100
	WebSocketWriteTimeout = 10 * time.Second
)

// WebSocketMessage represents a message to broadcast
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time string      `json:"time"`
}

// statusClient represents one connected WebSocket client
type statusClient struct {
	conn *websocket.Conn
	send chan WebSocketMessage
}

// RealtimeStatusService streams indicator refresh health to connected
// dashboard clients as each status row is written during a cycle
type RealtimeStatusService struct {
	clients    map[*statusClient]bool
	broadcast  chan WebSocketMessage
	register   chan *statusClient
	unregister chan *statusClient
	stopChan   chan struct{}
	upgrader   websocket.Upgrader
	mu         sync.RWMutex
	isRunning  bool
}

// NewRealtimeStatusService creates the status hub
func NewRealtimeStatusService() *RealtimeStatusService {
	return &RealtimeStatusService{
		clients:    make(map[*statusClient]bool),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *statusClient),
		unregister: make(chan *statusClient),
		stopChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Start runs the hub loop in the background
func (s *RealtimeStatusService) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	go s.run()
	log.Println("Realtime status service started")
}

// Stop shuts down the hub and disconnects all clients
func (s *RealtimeStatusService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	s.mu.Unlock()

	// Close all client connections
	s.mu.Lock()
	for client := range s.clients {
		close(client.send)
		client.conn.Close()
	}
	s.clients = make(map[*statusClient]bool)
	s.mu.Unlock()

	log.Println("Realtime status service stopped")
}

func (s *RealtimeStatusService) run() {
	for {
		select {
		case <-s.stopChan:
			return

		case client := <-s.register:
			s.mu.Lock()
			if len(s.clients) >= MaxWebSocketClients {
				s.mu.Unlock()
				client.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "Server at capacity"))
				client.conn.Close()
				log.Printf("WebSocket client rejected: max clients reached (%d)", MaxWebSocketClients)
				continue
			}
			s.clients[client] = true
			s.mu.Unlock()

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.mu.Unlock()

		case message := <-s.broadcast:
			s.mu.Lock()
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Slow client, drop it
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.mu.Unlock()
		}
	}
}

// BroadcastStatus pushes one indicator's refresh health to all clients
func (s *RealtimeStatusService) BroadcastStatus(status models.IndicatorUpdate) {
	s.mu.RLock()
	running := s.isRunning
	s.mu.RUnlock()
	if !running {
		return
	}

	message := WebSocketMessage{
		Type: "indicator_status",
		Data: status,
		Time: time.Now().UTC().Format(time.RFC3339),
	}

	select {
	case s.broadcast <- message:
	default:
		log.Println("Status broadcast channel full, dropping message")
	}
}

// ServeWS upgrades an HTTP request to a websocket status subscription
// GET /ws/status
func (s *RealtimeStatusService) ServeWS(c *gin.Context) {
	s.mu.RLock()
	running := s.isRunning
	clientCount := len(s.clients)
	s.mu.RUnlock()

	if !running {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Status stream not running"})
		return
	}
	if clientCount >= MaxWebSocketClients {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Too many connected clients"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &statusClient{
		conn: conn,
		send: make(chan WebSocketMessage, 16),
	}
	select {
	case s.register <- client:
	case <-s.stopChan:
		conn.Close()
		return
	}

	go s.writePump(client)
	go s.readPump(client)
}

func (s *RealtimeStatusService) writePump(client *statusClient) {
	defer client.conn.Close()
	for message := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(WebSocketWriteTimeout))
		if err := client.conn.WriteJSON(message); err != nil {
			return
		}
	}
}

func (s *RealtimeStatusService) readPump(client *statusClient) {
	defer func() {
		// After Stop the hub loop is gone; don't block on the unregister send
		select {
		case s.unregister <- client:
		case <-s.stopChan:
		}
		client.conn.Close()
	}()
	for {
		// Clients only listen; reads just detect disconnects
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
