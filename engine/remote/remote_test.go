package remote

import (
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-xmas/engine/input"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCamera struct {
	rotations [][2]float32
}

func (c *recordingCamera) Rotate(dAz, dEl float32) error {
	c.rotations = append(c.rotations, [2]float32{dAz, dEl})
	return nil
}

func (c *recordingCamera) OnResize(float32) error { return nil }

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitReceived(t *testing.T, s Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return s.Received() >= n }, 2*time.Second, 5*time.Millisecond)
}

func TestTouchDragBecomesRotation(t *testing.T) {
	q := input.NewQueue()
	s := NewServer(q)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTouchStart, X: 100, Y: 100, Width: 400, Height: 200}))
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTouchMove, X: 140, Y: 120, Width: 400, Height: 200}))
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTouchMove, X: 150, Y: 120, Width: 400, Height: 200}))
	waitReceived(t, s, 3)

	cam := &recordingCamera{}
	n, err := q.Drain(cam, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	scale := -2 * math.Pi / 400
	assert.InDelta(t, scale*40, cam.rotations[0][0], 1e-6)
	assert.InDelta(t, -scale*20, cam.rotations[0][1], 1e-6, "touch inverts the vertical axis")
	assert.InDelta(t, scale*10, cam.rotations[1][0], 1e-6)
	assert.InDelta(t, 0, cam.rotations[1][1], 1e-6)
}

func TestMalformedMessagesAreSkipped(t *testing.T) {
	q := input.NewQueue()
	s := NewServer(q, WithDefaultViewport(100, 100))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "pinch"}))
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTouchStart, X: 0, Y: 0}))
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTouchMove, X: 10, Y: 0}))
	waitReceived(t, s, 2)

	cam := &recordingCamera{}
	n, err := q.Drain(cam, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.InDelta(t, -2*math.Pi/100*10, cam.rotations[0][0], 1e-6)
	assert.Equal(t, 2, s.Received())
}

func TestMoveWithoutStartOnlySetsOrigin(t *testing.T) {
	q := input.NewQueue()
	s := NewServer(q)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(Message{Type: MessageTouchMove, X: 50, Y: 50}))
	waitReceived(t, s, 1)

	n, err := q.Drain(&recordingCamera{}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConnectionsAreCounted(t *testing.T) {
	s := NewServer(input.NewQueue())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return s.Connections() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return s.Connections() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestForeignOriginIsRejected(t *testing.T) {
	s := NewServer(input.NewQueue())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://elsewhere.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {srv.URL}})
	require.NoError(t, err, "the page's own origin is accepted")
	conn.Close()
}

func TestOversizedMessageDisconnects(t *testing.T) {
	q := input.NewQueue()
	s := NewServer(q)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat(" ", MaxMessageBytes+1))))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrDeadlineExceeded), "the server closes the socket instead of waiting")
	assert.Zero(t, s.Received())
}

func TestHomeServesTouchPad(t *testing.T) {
	srv := httptest.NewServer(NewServer(input.NewQueue()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/ws")

	missing, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
