package remote

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/camera"
	"github.com/Carmen-Shannon/oxy-xmas/engine/input"
	"github.com/gorilla/websocket"
)

//go:embed assets/index.html
var indexPage []byte

// MaxMessageBytes bounds one incoming socket message; a client exceeding it is disconnected.
const MaxMessageBytes = 4096

const (
	// MessageTouchStart records where a drag begins.
	MessageTouchStart = "touchstart"
	// MessageTouchMove rotates by the distance moved since the previous touch message.
	MessageTouchMove = "touchmove"
)

// Message is one touch sample sent by a remote client. Width and Height are the client's
// drawing surface size and scale the drag exactly like a local drag across a window that size.
type Message struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// server is the implementation of the Server interface.
type server struct {
	queue    input.Queue
	upgrader websocket.Upgrader

	defaultWidth  int
	defaultHeight int

	connections atomic.Int64
	received    atomic.Int64
}

// Server accepts touch drags from browsers over a WebSocket and turns them into rotate events
// on an input queue. Each connection tracks its own drag origin.
type Server interface {
	// Handler returns the HTTP handler serving the touch pad page at "/" and the socket at "/ws".
	//
	// Returns:
	//   - http.Handler: the handler
	Handler() http.Handler

	// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
	//
	// Parameters:
	//   - ctx: cancels the server
	//   - addr: the listen address, e.g. ":8080"
	//
	// Returns:
	//   - error: the listener error, or nil after a clean shutdown
	ListenAndServe(ctx context.Context, addr string) error

	// Connections returns the number of open sockets.
	Connections() int

	// Received returns the number of well-formed messages handled.
	Received() int
}

var _ Server = &server{}

// NewServer creates a remote input server feeding the given queue.
//
// Parameters:
//   - queue: the input queue rotate events are pushed to
//   - options: functional options to configure the server
//
// Returns:
//   - Server: the server
func NewServer(queue input.Queue, options ...ServerBuilderOption) Server {
	// A nil CheckOrigin makes the upgrader accept only pages served from the request's own host.
	s := &server{
		queue:         queue,
		defaultWidth:  800,
		defaultHeight: 600,
		upgrader:      websocket.Upgrader{},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHome)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *server) ListenAndServe(ctx context.Context, addr string) error {
	log := common.ComponentLogger("remote")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("remote input listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *server) Connections() int {
	return int(s.connections.Load())
}

func (s *server) Received() int {
	return int(s.received.Load())
}

func (s *server) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := common.ComponentLogger("remote")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxMessageBytes)

	s.connections.Add(1)
	defer s.connections.Add(-1)
	log.Info("remote connected", "remote", r.RemoteAddr)

	d := &drag{}
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("remote disconnected", "remote", r.RemoteAddr)
			} else {
				log.Warn("websocket read failed", "remote", r.RemoteAddr, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Warn("malformed remote message skipped", "remote", r.RemoteAddr, "error", err)
			continue
		}
		if !s.handle(d, msg) {
			log.Warn("unknown remote message skipped", "remote", r.RemoteAddr, "type", msg.Type)
			continue
		}
		s.received.Add(1)
	}
}

// drag is the per-connection touch origin.
type drag struct {
	active bool
	x, y   float64
}

// handle applies one message to the connection's drag state and reports whether the message
// type was recognised.
func (s *server) handle(d *drag, msg Message) bool {
	switch msg.Type {
	case MessageTouchStart:
		d.active, d.x, d.y = true, msg.X, msg.Y
		return true
	case MessageTouchMove:
		if !d.active {
			d.active, d.x, d.y = true, msg.X, msg.Y
			return true
		}
		w, h := msg.Width, msg.Height
		if w <= 0 || h <= 0 {
			w, h = s.defaultWidth, s.defaultHeight
		}
		dAz, dEl := camera.DragToRotation(msg.X-d.x, msg.Y-d.y, w, h, camera.DragTouch)
		d.x, d.y = msg.X, msg.Y
		s.queue.Push(input.Rotate(dAz, dEl))
		return true
	default:
		return false
	}
}
