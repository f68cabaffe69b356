// Package server implements the TCP accept loop and per-connection
// handshake, plus an HTTP side channel exposing pool occupancy.
package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/ferrodb/ferrodb/internal/protocol"
)

// Loop listens on addr and serves the handshake on every accepted
// connection until ctx (derived internally from SIGINT/SIGTERM) is
// cancelled. The transport is whatever each client announces in its
// preamble, not a fixed choice.
func Loop(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer func() { _ = ln.Close() }()

	log.Printf("ferrodb server listening on %s", addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			log.Printf("accept: %v", err)
			continue
		}
		go handleConn(ctx, conn)
	}
}

func handleConn(ctx context.Context, conn net.Conn) {
	connID := uuid.New()
	defer func() { _ = conn.Close() }()

	log.Printf("conn %s: accepted from %s", connID, conn.RemoteAddr())

	if err := serve(conn); err != nil && ctx.Err() == nil {
		log.Printf("conn %s: %v", connID, err)
	}

	log.Printf("conn %s: closed", connID)
}

// serve reads the client's preamble to learn which transport it chose, then
// exchanges Ping/Pong over that transport.
func serve(rw io.ReadWriter) error {
	br := bufio.NewReader(rw)
	transport, err := protocol.ReadPreamble(br)
	if err != nil {
		return fmt.Errorf("read preamble: %w", err)
	}

	stream := protocol.NewStream(struct {
		io.Reader
		io.Writer
	}{br, rw}, transport)

	var ping protocol.Ping
	if err := stream.ReadMessage(&ping); err != nil {
		return fmt.Errorf("read ping: %w", err)
	}

	status := protocol.PongOk
	if ping.ProtocolVersion != protocol.ProtocolVersion {
		status = protocol.PongWrongProtocol
	}

	return stream.WriteMessage(protocol.Pong{Status: status})
}

// Standalone runs the server half of the handshake once over conn, without
// a listener, then returns. It is used to pair with client.Handshake over an
// in-process util.ReadWrite for single-process demos and tests.
func Standalone(conn io.ReadWriter) error {
	return serve(conn)
}
