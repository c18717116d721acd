package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/isdelr/shopdesk-be/internal/auth"
	"github.com/isdelr/shopdesk-be/internal/services"
	ws "github.com/isdelr/shopdesk-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// Actions a client may send.
const (
	actionPing          = "ping"
	actionNextInvoiceID = "get_next_invoice_id"
)

// WebSocketHandler upgrades authenticated requests to the live invoice feed.
type WebSocketHandler struct {
	hub      *ws.Hub
	invoices services.InvoiceServiceProvider
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browser upgrades are
// accepted only from allowedOrigins.
func NewWebSocketHandler(hub *ws.Hub, invoices services.InvoiceServiceProvider, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		invoices: invoices,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountIDFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	ws.NewClient(h.hub, conn, accountID).Start(h.handleIncomingWSMessage)
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Str("account_id", client.AccountID).Msg("Error decoding websocket message")
		client.Reply(ws.NewErrorMessage("Invalid message"))
		return
	}

	switch msg.Action {
	case actionPing:
		reply, _ := ws.NewMessage(ws.ActionPong, nil)
		client.Reply(reply)

	case actionNextInvoiceID:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		id, err := h.invoices.PreviewNextInvoiceID(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to preview next invoice id over websocket")
			client.Reply(ws.NewErrorMessage("Failed to compute next invoice id"))
			return
		}
		reply, _ := ws.NewMessage(actionNextInvoiceID, map[string]string{"invoiceId": id})
		client.Reply(reply)

	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Reply(ws.NewErrorMessage("Unknown action: " + msg.Action))
	}
}
