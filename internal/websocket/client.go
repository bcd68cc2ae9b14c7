package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"livechat-backend/internal/chat"

	"github.com/gorilla/websocket"
)

// outFrame is the serialized form of every server-emitted event.
type outFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// WSClient adapts one gorilla connection to the relay's Conn contract.
// Writes go through a buffered channel drained by a single write pump;
// Emit drops the frame when the buffer is full.
type WSClient struct {
	conn     *websocket.Conn
	send     chan outFrame
	id       string
	done     chan struct{}
	mu       sync.Mutex
	isClosed bool
}

func newWSClient(conn *websocket.Conn, id string) *WSClient {
	return &WSClient{
		conn: conn,
		send: make(chan outFrame, 32),
		id:   id,
		done: make(chan struct{}),
	}
}

func (cl *WSClient) ID() string {
	return cl.id
}

// Emit implements chat.Conn. Fire-and-forget per the relay contract.
func (cl *WSClient) Emit(event string, payload interface{}) {
	select {
	case cl.send <- outFrame{Event: event, Data: payload}:
		incDelivered()
	default:
		log.Printf("Client %s send buffer full, dropping %s", cl.id, event)
	}
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Ping error for client %s: %v", cl.id, err)
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case frame, ok := <-cl.send:
			if !ok {
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.conn.WriteJSON(frame)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Error sending %s to client %s: %v", frame.Event, cl.id, err)
				return
			}
		}
	}
}

func (cl *WSClient) readMessage(relay *chat.Relay) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in readMessage: %v", r)
		}

		close(cl.done)
		relay.HandleDisconnect(context.Background(), cl)
		decConnections()
		log.Printf("Client %s disconnected", cl.id)
	}()

	cl.conn.SetReadLimit(512 * 1024)

	for {
		_, frame, err := cl.conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("Error reading from client %s: %v", cl.id, err)
			break
		}

		relay.Dispatch(context.Background(), cl, frame)
	}
}
