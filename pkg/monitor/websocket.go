package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"riverwatch/pkg/config"
)

// websocketDialer implements StreamDialer on gorilla/websocket.
type websocketDialer struct {
	handshakeTimeout time.Duration
	readTimeout      time.Duration
}

// NewWebsocketDialer creates the production dialer for station feeds.
func NewWebsocketDialer(net config.NetworkConfig) StreamDialer {
	return &websocketDialer{
		handshakeTimeout: net.HandshakeTimeout(),
		readTimeout:      net.ReadTimeout(),
	}
}

func (d *websocketDialer) Dial(ctx context.Context, url string) (StreamConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &websocketConn{conn: conn, readTimeout: d.readTimeout}, nil
}

type websocketConn struct {
	conn        *websocket.Conn
	readTimeout time.Duration
}

// ReadMessage blocks for the next text/binary frame. A feed that stays
// silent past the read timeout counts as a dead connection; the manager's
// backoff loop takes it from there.
func (c *websocketConn) ReadMessage() ([]byte, error) {
	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, err
		}
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *websocketConn) Close() error {
	return c.conn.Close()
}
