// package internal
package tcp

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/services/execution"
	"github.com/codecampus/gradebox/internal/core/services/language"
	"github.com/codecampus/gradebox/internal/metrics"
	"github.com/codecampus/gradebox/internal/tcp/connectionmanager"
	"github.com/codecampus/gradebox/internal/tcp/defs"
	"github.com/codecampus/gradebox/internal/tcp/handlers"
)

// TCPServer serves the framed execution protocol for judge components
// that hold a persistent connection instead of going through HTTP
type TCPServer struct {
	address       string
	execService   execution.IExecutionService
	registry      language.IRegistryService
	logger        primary.Logger
	listener      net.Listener
	connectionMgr *connectionmanager.ConnectionManager
	stopCh        chan struct{}
	handlers      map[byte]primary.MessageHandler
}

// TCPServerOption configures a TCPServer
type TCPServerOption func(*TCPServer)

// WithAddress sets the server address
func WithAddress(address string) TCPServerOption {
	return func(s *TCPServer) {
		s.address = address
	}
}

// NewTCPServer creates a new TCP server
func NewTCPServer(
	execService execution.IExecutionService,
	registry language.IRegistryService,
	logger primary.Logger,
	options ...TCPServerOption,
) *TCPServer {
	server := &TCPServer{
		address:       ":9000", // Default address
		execService:   execService,
		registry:      registry,
		logger:        logger,
		connectionMgr: connectionmanager.NewConnectionManager(logger),
		stopCh:        make(chan struct{}),
	}

	// Apply options
	for _, option := range options {
		option(server)
	}

	// Register message handlers
	server.setupMessageHandlers()

	return server
}

// setupMessageHandlers registers all message handlers
func (s *TCPServer) setupMessageHandlers() {
	s.handlers = map[byte]primary.MessageHandler{
		defs.MsgExecuteRequest: &handlers.ExecuteHandler{ExecService: s.execService, Logger: s.logger},
		defs.MsgListLanguages:  &handlers.ListLanguagesHandler{Registry: s.registry, Logger: s.logger},
		defs.MsgPing:           &handlers.PingHandler{},
	}
}

// Start starts the TCP server
func (s *TCPServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}

	s.logger.Info("TCP server listening", "address", s.address)

	// Accept connections in a goroutine
	go s.acceptConnections()

	return nil
}

// Stop stops the TCP server
func (s *TCPServer) Stop(ctx context.Context) error {
	close(s.stopCh)

	// Close listener
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Error("Failed to close listener", "error", err)
		}
	}

	// Close all connections
	s.connectionMgr.CloseAll()

	return nil
}

// ConnectionCount returns the number of live client connections
func (s *TCPServer) ConnectionCount() int {
	return s.connectionMgr.Count()
}

// acceptConnections accepts incoming connections
func (s *TCPServer) acceptConnections() {
	for {
		select {
		case <-s.stopCh:
			return
		default:
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.stopCh:
					return
				default:
					s.logger.Error("Failed to accept connection", "error", err)
					time.Sleep(defs.ConnectionRetryDelay) // Avoid tight loop on error
					continue
				}
			}

			// Handle connection in a goroutine
			go s.handleConnection(conn)
		}
	}
}

// handleConnection handles a single client connection
func (s *TCPServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	s.connectionMgr.AddConnection(conn)
	metrics.TCPConnections.Inc()
	defer func() {
		s.connectionMgr.RemoveConnection(conn)
		metrics.TCPConnections.Dec()
	}()

	// In-flight executions die with the server, not with their own
	// deadline, when shutdown starts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Info("Client connected", "addr", remote)

	// Read and process messages
	for {
		select {
		case <-s.stopCh:
			return
		default:
			// A client that goes quiet for too long loses its slot
			_ = conn.SetReadDeadline(time.Now().Add(defs.ReadIdleTimeout))

			msgType, payload, err := readMessage(conn)
			if err != nil {
				if err != io.EOF {
					s.logger.Error("Failed to read message", "addr", remote, "error", err)
				}
				s.logger.Info("Client disconnected", "addr", remote)
				return
			}

			// Find handler for message type
			handler, exists := s.handlers[msgType]
			if !exists {
				s.logger.Error("Unknown message type", "type", msgType)
				connectionmanager.SendErrorMessage(conn, defs.CodeUnknownMessageType, fmt.Sprintf("Unknown message type: %d", msgType))
				continue
			}

			// Handle message
			if err := handler.HandleMessage(ctx, conn, payload); err != nil {
				s.logger.Error("Error handling message", "type", msgType, "addr", remote, "error", err)
				return
			}
		}
	}
}

// readMessage reads a message from a connection
func readMessage(conn net.Conn) (byte, []byte, error) {
	// Read message header
	header := make([]byte, 8)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, nil, err
	}

	// Parse header
	magic := binary.BigEndian.Uint16(header[0:2])
	msgType := header[2]
	payloadLen := binary.BigEndian.Uint32(header[4:8])

	// Validate magic number
	if magic != defs.MagicNumber {
		return 0, nil, fmt.Errorf("invalid magic number: %x", magic)
	}

	if payloadLen > defs.MaxPayloadBytes {
		return 0, nil, fmt.Errorf("frame too large: %d bytes", payloadLen)
	}

	// Read payload
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return 0, nil, err
	}

	return msgType, payload, nil
}
