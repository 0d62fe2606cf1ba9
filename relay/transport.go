package relay

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrChannelClosed reports a send or receive on a channel whose remote
// has gone away. The relay swallows it on send; there is nobody left to
// notify.
var ErrChannelClosed = errors.New("channel closed")

// Frame is one raw inbound message. Binary frames carry streamed audio
// chunks; text frames carry JSON control messages.
type Frame struct {
	Binary bool
	Data   []byte
}

// Channel is one persistent duplex connection to a client. Within a
// channel, Send preserves the order events were produced in. Close is
// idempotent.
type Channel interface {
	Receive() (Frame, error)
	Send(Event) error
	Close() error
}

type wsChannel struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    bool
}

// NewWSChannel wraps an accepted websocket connection.
func NewWSChannel(conn *websocket.Conn) Channel {
	return &wsChannel{conn: conn}
}

func (c *wsChannel) Receive() (Frame, error) {
	kind, data, err := c.conn.ReadMessage()
	if err != nil {
		return Frame{}, ErrChannelClosed
	}
	return Frame{Binary: kind == websocket.BinaryMessage, Data: data}, nil
}

func (c *wsChannel) Send(ev Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	if err := c.conn.WriteJSON(ev); err != nil {
		return ErrChannelClosed
	}
	return nil
}

func (c *wsChannel) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.closed = true
		c.writeMu.Unlock()
		c.conn.Close()
	})
	return nil
}
