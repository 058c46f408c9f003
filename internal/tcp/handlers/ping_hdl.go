package handlers

import (
	"context"
	"net"

	"github.com/codecampus/gradebox/internal/tcp/connectionmanager"
	"github.com/codecampus/gradebox/internal/tcp/defs"
)

// PingHandler handles liveness probe messages
type PingHandler struct{}

// HandleMessage implements the MessageHandler interface. The payload is
// echoed back so clients can match replies to probes.
func (h *PingHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	return connectionmanager.SendMessage(conn, defs.MsgPong, payload)
}
