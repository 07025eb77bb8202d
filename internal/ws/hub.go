package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
	"github.com/gorilla/websocket"
)

// Client represents a WebSocket client connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	sensorID int // Optional: 0 means the client receives all sensors
}

// broadcastEnvelope carries an encoded message plus its sensor scope so the
// hub can honor per-client sensor filters. sensorID 0 targets every client.
type broadcastEnvelope struct {
	sensorID int
	payload  []byte
}

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastEnvelope
	register   chan *Client
	unregister chan *Client
}

// Message represents a WebSocket message structure
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, implement proper origin checking
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastEnvelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the WebSocket hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("Client connected (sensor filter: %d). Total clients: %d", client.sensorID, len(h.clients))

			// Send welcome message
			welcome := Message{
				Type:      "connected",
				Timestamp: time.Now(),
				Data:      map[string]string{"status": "connected"},
			}
			if data, err := json.Marshal(welcome); err == nil {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client disconnected. Total clients: %d", len(h.clients))
			}

		case envelope := <-h.broadcast:
			for client := range h.clients {
				// Honor the client's sensor filter
				if client.sensorID != 0 && envelope.sensorID != 0 && client.sensorID != envelope.sensorID {
					continue
				}
				select {
				case client.send <- envelope.payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// BroadcastProcessedReading broadcasts a newly processed reading to clients
// subscribed to its sensor (or to all sensors)
func (h *Hub) BroadcastProcessedReading(reading *models.ProcessedReading) {
	message := Message{
		Type:      "processed_reading",
		Timestamp: time.Now(),
		Data:      reading,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling processed reading: %v", err)
		return
	}

	select {
	case h.broadcast <- broadcastEnvelope{sensorID: reading.SensorID, payload: data}:
	default:
		log.Println("Broadcast channel is full, dropping message")
	}
}

// BroadcastSedimentStatus broadcasts a station assessment to clients
// subscribed to its sensor
func (h *Hub) BroadcastSedimentStatus(status *models.SedimentStatus) {
	message := Message{
		Type:      "sediment_status",
		Timestamp: time.Now(),
		Data:      status,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling sediment status: %v", err)
		return
	}

	select {
	case h.broadcast <- broadcastEnvelope{sensorID: status.SensorID, payload: data}:
	default:
		log.Println("Broadcast channel is full, dropping message")
	}
}

// BroadcastError broadcasts error messages to all clients
func (h *Hub) BroadcastError(errorMsg string) {
	message := Message{
		Type:      "error",
		Timestamp: time.Now(),
		Data:      map[string]string{"error": errorMsg},
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling error message: %v", err)
		return
	}

	select {
	case h.broadcast <- broadcastEnvelope{payload: data}:
	default:
		log.Println("Broadcast channel is full, dropping message")
	}
}

// GetConnectedClientsCount returns the number of connected clients
func (h *Hub) GetConnectedClientsCount() int {
	return len(h.clients)
}

// HandleWebSocket handles WebSocket connection requests
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	// Clients may subscribe to a single sensor via query parameter
	sensorID := 0
	if raw := r.URL.Query().Get("sensor_id"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			sensorID = parsed
		}
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		sensorID: sensorID,
	}

	client.hub.register <- client

	// Start goroutines for handling the client
	go client.writePump()
	go client.readPump()
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	// Set read deadline and pong handler
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Handle incoming messages from clients (e.g., sensor filter requests)
		log.Printf("Received message from client: %s", message)
	}
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to current message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
