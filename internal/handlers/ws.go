package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/pkg/logger"
)

const (
	wsSubscribe   = "subscribe"
	wsUnsubscribe = "unsubscribe"
	wsNext        = "next"
	wsError       = "error"
	wsComplete    = "complete"

	wsWriteWait = 10 * time.Second
)

type wsClientMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Topic string `json:"topic"`
	Key   string `json:"key"`
}

type wsServerMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Message string          `json:"message,omitempty"`
}

// WSHandler multiplexes hub subscriptions over one WebSocket per client.
type WSHandler struct {
	hub       *services.EventHub
	keepalive time.Duration
	upgrader  websocket.Upgrader
}

func NewWSHandler(hub *services.EventHub, keepalive time.Duration) *WSHandler {
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &WSHandler{
		hub:       hub,
		keepalive: keepalive,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// wsConn is the per-connection state. Only the writer goroutine touches the socket for writes.
type wsConn struct {
	conn *websocket.Conn
	hub  *services.EventHub
	log  zerolog.Logger

	out        chan wsServerMessage
	done       chan struct{}
	writerDone chan struct{}

	mu   sync.Mutex
	subs map[string]*services.Subscription
	wg   sync.WaitGroup
}

// Serve upgrades the request and runs the subscribe/unsubscribe protocol.
// GET /api/ws
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	ws := &wsConn{
		conn:       conn,
		hub:        h.hub,
		log:        logger.Component("ws").With().Str("conn", uuid.NewString()).Logger(),
		out:        make(chan wsServerMessage, 64),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
		subs:       make(map[string]*services.Subscription),
	}
	ws.log.Info().Msg("WebSocket client connected")

	go func() {
		defer close(ws.writerDone)
		ws.writeLoop(h.keepalive)
	}()

	ws.readLoop(h.keepalive)

	close(ws.done)
	ws.closeAll()
	ws.wg.Wait()
	<-ws.writerDone
	conn.Close()
	ws.log.Info().Msg("WebSocket client disconnected")
}

func (ws *wsConn) readLoop(keepalive time.Duration) {
	readWait := 2 * keepalive
	ws.conn.SetReadDeadline(time.Now().Add(readWait))
	ws.conn.SetPongHandler(func(string) error {
		return ws.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		var msg wsClientMessage
		if err := ws.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.log.Debug().Err(err).Msg("WebSocket read error")
			}
			return
		}
		ws.conn.SetReadDeadline(time.Now().Add(readWait))

		switch msg.Type {
		case wsSubscribe:
			ws.subscribe(msg)
		case wsUnsubscribe:
			ws.unsubscribe(msg.ID)
		default:
			ws.send(wsServerMessage{Type: wsError, ID: msg.ID, Message: "unknown message type: " + msg.Type})
		}
	}
}

func (ws *wsConn) writeLoop(keepalive time.Duration) {
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg := <-ws.out:
			ws.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.conn.WriteJSON(msg); err != nil {
				ws.log.Debug().Err(err).Msg("WebSocket write failed")
				ws.conn.Close()
				return
			}
		case <-ticker.C:
			if err := ws.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				ws.conn.Close()
				return
			}
		case <-ws.done:
			ws.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
			return
		}
	}
}

// send queues msg for the writer. It gives up once the connection is closing
// or the writer has stopped after a failed write.
func (ws *wsConn) send(msg wsServerMessage) {
	select {
	case ws.out <- msg:
	case <-ws.done:
	case <-ws.writerDone:
	}
}

func (ws *wsConn) subscribe(msg wsClientMessage) {
	if msg.ID == "" {
		ws.send(wsServerMessage{Type: wsError, Message: "subscription id is required"})
		return
	}
	topic := services.Topic(msg.Topic)
	if !services.ValidTopic(topic) {
		ws.send(wsServerMessage{Type: wsError, ID: msg.ID, Message: "unknown topic: " + msg.Topic})
		return
	}
	if msg.Key == "" {
		ws.send(wsServerMessage{Type: wsError, ID: msg.ID, Message: "key is required"})
		return
	}

	ws.mu.Lock()
	if _, exists := ws.subs[msg.ID]; exists {
		ws.mu.Unlock()
		ws.send(wsServerMessage{Type: wsError, ID: msg.ID, Message: "subscription id already in use"})
		return
	}
	sub, err := ws.hub.Subscribe(topic, msg.Key)
	if err != nil {
		ws.mu.Unlock()
		ws.send(wsServerMessage{Type: wsError, ID: msg.ID, Message: "event stream unavailable"})
		return
	}
	ws.subs[msg.ID] = sub
	ws.mu.Unlock()

	ws.wg.Add(1)
	go ws.pump(msg.ID, sub)
}

// pump forwards one subscription's entries until it ends, then reports completion.
func (ws *wsConn) pump(id string, sub *services.Subscription) {
	defer ws.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-ws.done:
			cancel()
		case <-ws.writerDone:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		payload, ok := sub.Next(ctx)
		if !ok {
			break
		}
		data, err := json.Marshal(payload)
		if err != nil {
			ws.log.Error().Err(err).Msg("WebSocket marshal error")
			continue
		}
		ws.send(wsServerMessage{Type: wsNext, ID: id, Payload: data})
	}

	ws.mu.Lock()
	if ws.subs[id] == sub {
		delete(ws.subs, id)
	}
	ws.mu.Unlock()
	sub.Close()
	ws.send(wsServerMessage{Type: wsComplete, ID: id})
}

func (ws *wsConn) unsubscribe(id string) {
	ws.mu.Lock()
	sub, ok := ws.subs[id]
	ws.mu.Unlock()
	if ok {
		sub.Close()
	}
}

func (ws *wsConn) closeAll() {
	ws.mu.Lock()
	subs := make([]*services.Subscription, 0, len(ws.subs))
	for _, sub := range ws.subs {
		subs = append(subs, sub)
	}
	ws.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
