package server

import (
	"encoding/json"
	"errors"
	"image"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Nic0w/zbars/internal/barcode"
	"github.com/Nic0w/zbars/internal/capture"
	"github.com/Nic0w/zbars/internal/output"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveMessage is every message the server sends on /ws/live.
type LiveMessage struct {
	Type      string           `json:"type"` // frame, scan_result, error
	Seq       uint64           `json:"seq,omitempty"`
	Time      string           `json:"time,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
	Result    *output.Document `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
}

// LiveRequest asks the server to scan an image sent over the socket.
type LiveRequest struct {
	Type      string   `json:"type"` // image
	RequestID string   `json:"request_id,omitempty"`
	Image     []byte   `json:"image,omitempty"`
	Formats   []string `json:"formats,omitempty"`
	Multi     bool     `json:"multi,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// enqueue never blocks; a client that cannot keep up is disconnected.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		websocketMessagesTotal.WithLabelValues("dropped").Inc()
		c.close()
		return false
	}
}

// Hub fans messages out to every connected live client.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Broadcast sends msg to every client.
func (h *Hub) Broadcast(msg LiveMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.enqueue(data)
	}
	return nil
}

// Publish broadcasts a captured frame. It has the capture.Sink signature.
func (h *Hub) Publish(f capture.Frame) error {
	results := make([]barcode.Result, 0, len(f.Symbols))
	for _, d := range f.Symbols {
		results = append(results, barcode.FromDecoded(d, image.Point{}))
	}
	doc := output.NewDocument(output.Report{Source: "live", Index: int(f.Seq), Results: results})
	return h.Broadcast(LiveMessage{
		Type:   "frame",
		Seq:    f.Seq,
		Time:   f.Time.UTC().Format(time.RFC3339Nano),
		Result: &doc,
	})
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

// liveHandler streams capture frames and answers image scan requests.
func (s *Server) liveHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
	if !s.hub.add(c) {
		_ = conn.Close()
		return
	}
	websocketConnections.Inc()
	defer websocketConnections.Dec()
	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	go s.writePump(c)
	s.readPump(r, c)
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
			websocketMessagesTotal.WithLabelValues("sent").Inc()
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (s *Server) readPump(r *http.Request, c *client) {
	defer s.hub.remove(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType == websocket.TextMessage {
			s.reply(c, s.handleLiveRequest(r, data))
		}
	}
}

func (s *Server) reply(c *client, msg LiveMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}
	c.enqueue(data)
}

func (s *Server) handleLiveRequest(r *http.Request, data []byte) LiveMessage {
	var req LiveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return LiveMessage{Type: "error", ErrorType: "invalid_request", Error: "Failed to parse request: " + err.Error()}
	}
	fail := func(kind string, err error) LiveMessage {
		return LiveMessage{Type: "error", RequestID: req.RequestID, ErrorType: kind, Error: err.Error()}
	}
	if req.Type != "image" {
		return fail("invalid_request", errors.New("unsupported request type: "+req.Type))
	}
	if len(req.Image) == 0 {
		return fail("invalid_request", errors.New("no image data provided"))
	}

	opts := s.options
	opts.Multi = opts.Multi || req.Multi
	if len(req.Formats) > 0 {
		formats, err := barcode.ParseFormats(req.Formats)
		if err != nil {
			return fail("invalid_request", err)
		}
		opts.Formats = formats
	}

	report, err := s.scan(r, req.RequestID, req.Image, opts)
	if err != nil {
		return fail("processing_error", err)
	}
	doc := output.NewDocument(report)
	return LiveMessage{Type: "scan_result", RequestID: req.RequestID, Result: &doc}
}
