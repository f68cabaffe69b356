// Package client implements the client half of the connection handshake:
// pick a transport, announce it, exchange a Ping/Pong version check.
package client

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/ferrodb/ferrodb/internal/protocol"
)

// Conn is an established, handshaken connection ready for higher-level use.
type Conn struct {
	rw        io.ReadWriter
	Transport protocol.Transport
	Stream    *protocol.Stream
}

// Dial connects to addr and performs the handshake over transport.
func Dial(addr string, timeout time.Duration, transport protocol.Transport) (*Conn, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	c, err := Handshake(conn, transport)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// Handshake runs the client side of the protocol over an already-open
// connection: announce transport via the preamble, send a Ping, wait for
// Pong.
func Handshake(rw io.ReadWriter, transport protocol.Transport) (*Conn, error) {
	if err := protocol.WritePreamble(rw, transport); err != nil {
		return nil, fmt.Errorf("write preamble: %w", err)
	}

	stream := protocol.NewStream(rw, transport)

	if err := stream.WriteMessage(protocol.Ping{ProtocolVersion: protocol.ProtocolVersion}); err != nil {
		return nil, fmt.Errorf("write ping: %w", err)
	}

	var pong protocol.Pong
	if err := stream.ReadMessage(&pong); err != nil {
		return nil, fmt.Errorf("read pong: %w", err)
	}
	if pong.Status != protocol.PongOk {
		return nil, fmt.Errorf("client: server rejected protocol version: %s", pong.Status)
	}

	return &Conn{rw: rw, Transport: transport, Stream: stream}, nil
}

// Close releases the underlying connection, if it supports it.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
