package websocket

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// broadcastBuffer bounds how many events may queue while Run is busy.
const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts invoice events to
// them. It satisfies services.EventPublisher.
type Hub struct {
	// Registered clients. Only Run touches the map.
	clients map[*Client]bool

	// Encoded messages for every client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	done  chan struct{}
	count atomic.Int64
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns when ctx is
// cancelled, after closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			client.closeSend()
			delete(h.clients, client)
		}
		h.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			log.Info().Str("account_id", client.AccountID).Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				h.count.Store(int64(len(h.clients)))
				log.Info().Str("account_id", client.AccountID).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop it rather than stall everyone else.
					client.closeSend()
					delete(h.clients, client)
					log.Warn().Str("account_id", client.AccountID).Msg("Dropping websocket client with full send buffer")
				}
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Publish encodes an event and queues it for every client. It never
// blocks: when the queue is full or the hub has stopped the event is
// dropped.
func (h *Hub) Publish(action string, payload any) {
	message, err := NewMessage(action, payload)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket event")
		return
	}
	select {
	case h.Broadcast <- message:
	case <-h.done:
	default:
		log.Warn().Str("action", action).Msg("Websocket broadcast queue full, dropping event")
	}
}

func (h *Hub) register(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}
