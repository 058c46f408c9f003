package primary

import (
	"context"
	"net"
)

// MessageHandler defines an interface for handling different message types
// on the TCP surface. The reply is written back on conn by the handler.
type MessageHandler interface {
	HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error
}
