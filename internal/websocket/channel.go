package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"ai-researcher-be/internal/pkg/logger"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	sendQueueSize = 256
)

// Conn is the write side of a websocket connection. *websocket.Conn
// satisfies it; tests substitute their own.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// Message is one outbound frame of the research stream.
type Message struct {
	Type   string      `json:"type"`
	Output interface{} `json:"output"`
}

// Channel is the middleman between one research run and its websocket
// connection. A single writer goroutine owns the connection; producers
// enqueue through Send and never block on a slow client. The queue is
// bounded: past the bound the oldest pending logs frame is dropped first,
// while non-logs frames (usage, path, error) are never discarded.
type Channel struct {
	conn Conn
	log  logger.ILogger

	mu     sync.Mutex
	queue  []Message
	closed bool

	notify chan struct{}
	done   chan struct{}
}

func NewChannel(conn Conn, log logger.ILogger) *Channel {
	c := &Channel{
		conn:   conn,
		log:    log,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// Send queues one frame for delivery. It never blocks and is a no-op once
// the channel is closed or the connection has failed.
func (c *Channel) Send(msgType string, output interface{}) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if len(c.queue) >= sendQueueSize && !c.dropOldestLog() && msgType == "logs" {
		// Queue full of frames that must not be dropped; shed the new
		// logs frame instead.
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, Message{Type: msgType, Output: output})
	c.mu.Unlock()

	c.wake()
}

// Stream adapts Send to the progress sink the researcher expects.
func (c *Channel) Stream(msgType string, output interface{}) {
	c.Send(msgType, output)
}

// Close stops accepting frames and lets the writer drain what is already
// queued. Idempotent and safe to race with Send.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wake()
}

// Done is closed once the writer has exited; after that no further frames
// touch the connection.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

func (c *Channel) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// dropOldestLog removes the oldest queued logs frame. Caller holds c.mu.
func (c *Channel) dropOldestLog() bool {
	for i, m := range c.queue {
		if m.Type == "logs" {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return true
		}
	}
	return false
}

// next pops the head frame. The second return reports whether a frame was
// available, the third whether the channel is closed and empty.
func (c *Channel) next() (Message, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) > 0 {
		msg := c.queue[0]
		c.queue = c.queue[1:]
		return msg, true, false
	}
	return Message{}, false, c.closed
}

func (c *Channel) abort() {
	c.mu.Lock()
	c.closed = true
	c.queue = nil
	c.mu.Unlock()
}

func (c *Channel) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()

	for {
		msg, ok, finished := c.next()
		if ok {
			data, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("websocket", "Dropping unserializable frame", map[string]interface{}{
					"type":  msg.Type,
					"error": err.Error(),
				})
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Warn("websocket", "Write failed, discarding remaining frames", map[string]interface{}{
					"error": err.Error(),
				})
				c.abort()
				return
			}
			continue
		}
		if finished {
			return
		}

		select {
		case <-c.notify:
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.abort()
				return
			}
		}
	}
}
