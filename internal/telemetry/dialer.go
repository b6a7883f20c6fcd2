package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/websocket"
)

// Conn is an open telemetry connection.
type Conn interface {
	// Receive blocks until the next text frame arrives.
	Receive() ([]byte, error)
	Close() error
}

// Dialer opens telemetry connections.
type Dialer interface {
	Dial(ctx context.Context, rawURL string) (Conn, error)
}

// WebSocketDialer dials with golang.org/x/net/websocket.
type WebSocketDialer struct {
	// Origin overrides the Origin header; by default it is derived from the
	// target URL.
	Origin string
}

// Dial opens a WebSocket connection to rawURL.
func (d WebSocketDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	origin := d.Origin
	if origin == "" {
		derived, err := originFor(rawURL)
		if err != nil {
			return nil, err
		}
		origin = derived
	}
	cfg, err := websocket.NewConfig(rawURL, origin)
	if err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", rawURL, err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Receive() ([]byte, error) {
	var frame []byte
	if err := websocket.Message.Receive(c.conn, &frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func originFor(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse telemetry url: %w", err)
	}
	scheme := "http"
	if strings.EqualFold(parsed.Scheme, "wss") {
		scheme = "https"
	}
	return scheme + "://" + parsed.Host + "/", nil
}
