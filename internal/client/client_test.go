package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferrodb/ferrodb/internal/protocol"
	"github.com/ferrodb/ferrodb/internal/server"
	"github.com/ferrodb/ferrodb/internal/util"
)

func TestHandshake_Succeeds(t *testing.T) {
	serverSide, clientSide := util.DuplexPipe()

	done := make(chan error, 1)
	go func() { done <- server.Standalone(serverSide) }()

	conn, err := Handshake(clientSide, protocol.TransportJSON)
	require.NoError(t, err)
	require.Equal(t, protocol.TransportJSON, conn.Transport)

	require.NoError(t, <-done)
}
