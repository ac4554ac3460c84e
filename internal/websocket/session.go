package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

// Start commands carry JSON with source url lists and config overrides, so
// the read limit is far above a chat-sized frame.
const maxCommandSize = 64 * 1024

// ConfigureSession arms the read side of the keepalive on a fresh
// connection. The write loop pings on its own; a pong arriving while a read
// is in flight pushes the deadline forward, so only a dead peer times out.
func ConfigureSession(conn *websocket.Conn) {
	conn.SetReadLimit(maxCommandSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// RefreshReadDeadline re-arms the read deadline before a blocking read. A
// research run keeps the command loop away from the socket for minutes, so
// the deadline set on the previous pass has usually expired by the time the
// loop comes back.
func RefreshReadDeadline(conn *websocket.Conn) error {
	return conn.SetReadDeadline(time.Now().Add(pongWait))
}
