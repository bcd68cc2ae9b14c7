package websocket

import (
	"net/http"

	"livechat-backend/internal/chat"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests into relay connections. Whether a
// connection is an agent or a visitor is decided by the first events it
// sends, not by the route.
type Handler struct {
	relay *chat.Relay
}

func NewHandler(relay *chat.Relay) *Handler {
	return &Handler{relay: relay}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cl := newWSClient(conn, uuid.NewString())
	incConnections()

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.relay)
}
