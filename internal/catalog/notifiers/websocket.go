package notifiers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/daniacca/pokelab/internal/catalog"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WebSocketNotifier broadcasts events to every connected websocket client.
// It also serves the upgrade endpoint clients connect through.
type WebSocketNotifier struct {
	id        string
	mu        sync.Mutex
	clients   map[*websocket.Conn]struct{}
	upgrader  websocket.Upgrader
	broadcast chan catalog.EvaluationEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    catalog.Logger
}

// NewWebSocketNotifier creates the notifier and starts its broadcaster.
func NewWebSocketNotifier(id string, logger catalog.Logger) *WebSocketNotifier {
	if logger == nil {
		logger = catalog.NewNoOpLogger()
	}
	n := &WebSocketNotifier{
		id:        id,
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan catalog.EvaluationEvent, 256),
		done:      make(chan struct{}),
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	n.wg.Add(1)
	go n.run()
	return n
}

func (wsn *WebSocketNotifier) ID() string {
	return wsn.id
}

func (wsn *WebSocketNotifier) Type() string {
	return "websocket"
}

// ClientCount returns the number of connected clients.
func (wsn *WebSocketNotifier) ClientCount() int {
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	return len(wsn.clients)
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. Messages sent by clients are discarded.
func (wsn *WebSocketNotifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsn.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wsn.logger.Warnf("websocket upgrade failed: remote=%s error=%v", r.RemoteAddr, err)
		return
	}
	if !wsn.addClient(conn) {
		conn.Close()
		return
	}
	wsn.logger.Debugf("websocket client connected: remote=%s", r.RemoteAddr)

	defer func() {
		wsn.removeClient(conn)
		wsn.logger.Debugf("websocket client disconnected: remote=%s", r.RemoteAddr)
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (wsn *WebSocketNotifier) addClient(conn *websocket.Conn) bool {
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	select {
	case <-wsn.done:
		return false
	default:
	}
	wsn.clients[conn] = struct{}{}
	return true
}

func (wsn *WebSocketNotifier) removeClient(conn *websocket.Conn) {
	wsn.mu.Lock()
	if _, ok := wsn.clients[conn]; ok {
		delete(wsn.clients, conn)
		conn.Close()
	}
	wsn.mu.Unlock()
}

// Notify queues the event for broadcast.
func (wsn *WebSocketNotifier) Notify(ctx context.Context, event catalog.EvaluationEvent) error {
	select {
	case <-wsn.done:
		return fmt.Errorf("websocket notifier %s is closed", wsn.id)
	default:
	}

	select {
	case wsn.broadcast <- event:
		return nil
	case <-wsn.done:
		return fmt.Errorf("websocket notifier %s is closed", wsn.id)
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return fmt.Errorf("notification queue full")
	}
}

func (wsn *WebSocketNotifier) run() {
	defer wsn.wg.Done()
	for {
		select {
		case <-wsn.done:
			return
		case event := <-wsn.broadcast:
			wsn.send(event)
		}
	}
}

func (wsn *WebSocketNotifier) send(event catalog.EvaluationEvent) {
	data, err := event.JSON()
	if err != nil {
		wsn.logger.Errorf("websocket event encoding failed: event=%s error=%v", event.ID, err)
		return
	}

	wsn.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(wsn.clients))
	for conn := range wsn.clients {
		conns = append(conns, conn)
	}
	wsn.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			wsn.logger.Debugf("websocket write failed, dropping client: error=%v", err)
			wsn.removeClient(conn)
		}
	}
}

// Close disconnects every client and stops the broadcaster.
func (wsn *WebSocketNotifier) Close() error {
	wsn.closeOnce.Do(func() {
		wsn.mu.Lock()
		close(wsn.done)
		for conn := range wsn.clients {
			conn.Close()
			delete(wsn.clients, conn)
		}
		wsn.mu.Unlock()
		wsn.wg.Wait()
	})
	return nil
}
