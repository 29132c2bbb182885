package results

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/2beens/exercisetracker/internal/telemetry/metrics"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	viewerBuffer   = 16
)

type HubParams struct {
	AllowedOrigins []string
	// OnEmpty is called when the last live viewer goes away.
	OnEmpty func()
	Metrics *metrics.Manager
}

// Hub pushes outcomes to the connected live viewers over websockets.
type Hub struct {
	upgrader websocket.Upgrader
	onEmpty  func()
	metrics  *metrics.Manager

	mu      sync.Mutex
	viewers map[*viewer]struct{}
	closed  bool
	active  sync.WaitGroup
}

type viewer struct {
	conn       *websocket.Conn
	send       chan []byte
	writerDone chan struct{}
}

func NewHub(params HubParams) *Hub {
	allowed := make(map[string]bool, len(params.AllowedOrigins))
	for _, o := range params.AllowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		onEmpty: params.OnEmpty,
		metrics: params.Metrics,
		viewers: make(map[*viewer]struct{}),
	}
}

func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// Publish never blocks on a slow viewer, its message is dropped instead.
func (h *Hub) Publish(_ context.Context, outcome Outcome) error {
	msg, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for v := range h.viewers {
		select {
		case v.send <- msg:
		default:
			log.Debugf("live viewer %s too slow, outcome %d/%d dropped", v.conn.RemoteAddr(), outcome.Generation, outcome.Tick)
		}
	}
	return nil
}

func (h *Hub) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader already replied
		log.Warnf("live viewer upgrade: %s", err)
		return
	}

	v := &viewer{
		conn:       conn,
		send:       make(chan []byte, viewerBuffer),
		writerDone: make(chan struct{}),
	}
	if !h.register(v) {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait),
		)
		_ = conn.Close()
		return
	}
	defer h.active.Done()

	go h.writeLoop(v)
	h.readLoop(v)

	last := h.unregister(v)
	<-v.writerDone
	_ = conn.Close()

	if last && h.onEmpty != nil {
		log.Debugln("last live viewer left")
		h.onEmpty()
	}
}

func (h *Hub) register(v *viewer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.viewers[v] = struct{}{}
	h.active.Add(1)

	if h.metrics != nil {
		h.metrics.GaugeLiveViewers.Set(float64(len(h.viewers)))
	}
	log.Debugf("live viewer connected: %s, viewers: %d", v.conn.RemoteAddr(), len(h.viewers))
	return true
}

// unregister reports whether v was the last viewer of a running hub.
func (h *Hub) unregister(v *viewer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.viewers, v)
	close(v.send)

	if h.metrics != nil {
		h.metrics.GaugeLiveViewers.Set(float64(len(h.viewers)))
	}
	log.Debugf("live viewer disconnected: %s, viewers: %d", v.conn.RemoteAddr(), len(h.viewers))
	return len(h.viewers) == 0 && !h.closed
}

// readLoop only exists to notice the viewer going away and to handle pongs.
func (h *Hub) readLoop(v *viewer) {
	v.conn.SetReadLimit(maxMessageSize)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("live viewer %s read: %s", v.conn.RemoteAddr(), err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(v *viewer) {
	defer close(v.writerDone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-v.send:
			if !ok {
				_ = v.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debugf("live viewer %s write: %s", v.conn.RemoteAddr(), err)
				// unblocks readLoop, which then unregisters the viewer
				_ = v.conn.Close()
				for range v.send {
				}
				return
			}
		case <-ticker.C:
			if err := v.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = v.conn.Close()
				for range v.send {
				}
				return
			}
		}
	}
}

// Close disconnects all viewers and waits for their handlers to finish.
// OnEmpty is not called for viewers dropped by Close.
func (h *Hub) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	for v := range h.viewers {
		_ = v.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait),
		)
		_ = v.conn.Close()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
