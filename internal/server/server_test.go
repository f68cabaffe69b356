package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferrodb/ferrodb/internal/protocol"
	"github.com/ferrodb/ferrodb/internal/util"
)

func TestServe_AcceptsMatchingProtocolVersion(t *testing.T) {
	serverSide, clientSide := util.DuplexPipe()

	done := make(chan error, 1)
	go func() { done <- serve(serverSide) }()

	require.NoError(t, protocol.WritePreamble(clientSide, protocol.TransportJSON))

	stream := protocol.NewStream(clientSide, protocol.TransportJSON)
	require.NoError(t, stream.WriteMessage(protocol.Ping{ProtocolVersion: protocol.ProtocolVersion}))

	var pong protocol.Pong
	require.NoError(t, stream.ReadMessage(&pong))
	require.Equal(t, protocol.PongOk, pong.Status)

	require.NoError(t, <-done)
}

func TestServe_RejectsWrongProtocolVersion(t *testing.T) {
	serverSide, clientSide := util.DuplexPipe()

	done := make(chan error, 1)
	go func() { done <- serve(serverSide) }()

	require.NoError(t, protocol.WritePreamble(clientSide, protocol.TransportJSON))

	stream := protocol.NewStream(clientSide, protocol.TransportJSON)
	require.NoError(t, stream.WriteMessage(protocol.Ping{ProtocolVersion: 9999}))

	var pong protocol.Pong
	require.NoError(t, stream.ReadMessage(&pong))
	require.Equal(t, protocol.PongWrongProtocol, pong.Status)

	require.NoError(t, <-done)
}
