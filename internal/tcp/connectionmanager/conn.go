package connectionmanager

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/tcp/defs"
)

// ConnectionManager tracks live client connections so shutdown can
// notify and close them
type ConnectionManager struct {
	Connections map[string]net.Conn // remote address -> conn
	ConnMutex   sync.RWMutex
	Logger      primary.Logger
}

// ErrorData represents data sent with error responses
type ErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(logger primary.Logger) *ConnectionManager {
	return &ConnectionManager{
		Connections: make(map[string]net.Conn),
		Logger:      logger,
	}
}

// AddConnection registers a client connection
func (cm *ConnectionManager) AddConnection(conn net.Conn) {
	cm.ConnMutex.Lock()
	cm.Connections[conn.RemoteAddr().String()] = conn
	cm.ConnMutex.Unlock()
}

// RemoveConnection removes a client when its connection is closed
func (cm *ConnectionManager) RemoveConnection(conn net.Conn) {
	cm.ConnMutex.Lock()
	delete(cm.Connections, conn.RemoteAddr().String())
	cm.ConnMutex.Unlock()
}

// Count returns the number of live connections
func (cm *ConnectionManager) Count() int {
	cm.ConnMutex.RLock()
	defer cm.ConnMutex.RUnlock()

	return len(cm.Connections)
}

// CloseAll notifies every client that the server is going away, then
// closes the connections
func (cm *ConnectionManager) CloseAll() {
	cm.ConnMutex.Lock()
	defer cm.ConnMutex.Unlock()

	for addr, conn := range cm.Connections {
		SendErrorMessage(conn, defs.CodeShuttingDown, "server shutting down")
		if err := conn.Close(); err != nil {
			cm.Logger.Error("Failed to close connection", "addr", addr, "error", err)
		}
		delete(cm.Connections, addr)
	}
}

// SendErrorMessage sends an error message to a client
func SendErrorMessage(conn net.Conn, code int, message string) {
	errorData := ErrorData{
		Code:    code,
		Message: message,
	}

	errorBytes, err := json.Marshal(errorData)
	if err != nil {
		// Can't do much if marshaling fails
		return
	}

	// Ignore errors here as the connection might be closing
	_ = SendMessage(conn, defs.MsgError, errorBytes)
}

// SendMessage sends a framed message to a client
func SendMessage(conn net.Conn, msgType byte, payload []byte) error {
	// Prepare header
	header := make([]byte, 8)
	binary.BigEndian.PutUint16(header[0:2], defs.MagicNumber)
	header[2] = msgType
	header[3] = 0 // Reserved
	binary.BigEndian.PutUint32(header[4:8], uint32(len(payload)))

	// Send header
	if _, err := conn.Write(header); err != nil {
		return fmt.Errorf("failed to write message header: %w", err)
	}

	// Send payload (if any)
	if len(payload) > 0 {
		if _, err := conn.Write(payload); err != nil {
			return fmt.Errorf("failed to write message payload: %w", err)
		}
	}

	return nil
}
