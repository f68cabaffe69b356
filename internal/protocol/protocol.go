// Package protocol defines the wire handshake and message types shared by
// the server and client: a text preamble identifying the transport, followed
// by a Ping/Pong version exchange.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ProtocolVersion is bumped whenever Ping/Pong or the transport framing
// changes incompatibly.
const ProtocolVersion = 1

// DefaultPort is the protocol's default TCP port, the same value as the
// default Server.Port in config.Defaults. Loop itself listens on whatever
// address it is given.
const DefaultPort = 1337

const preamble = "HELLO FERRODB "

// Ping is sent by the client immediately after the preamble.
type Ping struct {
	ProtocolVersion uint64 `json:"protocol_version"`
}

// PongStatus reports whether the server accepted the client's Ping.
type PongStatus string

const (
	PongOk            PongStatus = "ok"
	PongWrongProtocol PongStatus = "wrong_protocol"
)

// Pong is the server's reply to a Ping.
type Pong struct {
	Status PongStatus `json:"status"`
}

// WritePreamble writes "HELLO FERRODB <transport>\n" to w.
func WritePreamble(w io.Writer, t Transport) error {
	_, err := fmt.Fprintf(w, "%s%s\n", preamble, t)
	return err
}

// ReadPreamble reads and parses the preamble line, returning the transport
// the peer announced.
func ReadPreamble(r *bufio.Reader) (Transport, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	if !strings.HasPrefix(line, preamble) {
		return "", fmt.Errorf("protocol: bad preamble %q", line)
	}
	return ParseTransport(strings.TrimPrefix(line, preamble))
}
