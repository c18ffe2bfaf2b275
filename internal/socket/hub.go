package socket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// DecisionEvent is pushed to a requesting organization when an admin
// resolves its reservation. Polling the request ledger remains the
// fallback for organizations that are not connected.
type DecisionEvent struct {
	RequestID  string `json:"requestID"`
	DonationID string `json:"donationID"`
	Outcome    string `json:"outcome"` // APPROVED or REJECTED
	Notes      string `json:"notes,omitempty"`
}

// Hub tracks connected WebSocket clients, keyed by organizationID.
type Hub struct {
	clients map[string]*websocket.Conn
	// mu guards clients across handler goroutines.
	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a client connection for an organization.
func (h *Hub) Register(organizationID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[organizationID] = conn
	log.Printf("WebSocket client registered: %s", organizationID)
}

// Unregister removes an organization's connection.
func (h *Hub) Unregister(organizationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[organizationID]; ok {
		delete(h.clients, organizationID)
		log.Printf("WebSocket client unregistered: %s", organizationID)
	}
}

// SendDecision pushes a decision event to one organization. A missing or
// broken connection is not an error; the requester can still poll.
func (h *Hub) SendDecision(organizationID string, event DecisionEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[organizationID]
	if !ok {
		log.Printf("WebSocket client not found, decision not pushed: %s", organizationID)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
