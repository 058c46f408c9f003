package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/services/execution"
	"github.com/codecampus/gradebox/internal/domain"
	"github.com/codecampus/gradebox/internal/static/errs"
	"github.com/codecampus/gradebox/internal/tcp/connectionmanager"
	"github.com/codecampus/gradebox/internal/tcp/defs"
)

// ExecuteHandler handles execute request messages
type ExecuteHandler struct {
	ExecService execution.IExecutionService
	Logger      primary.Logger
}

// HandleMessage implements the MessageHandler interface. Execution
// outcomes, including failures of the submitted code, go back as normal
// replies; only an unreadable frame tears the connection down.
func (h *ExecuteHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	var req domain.ExecutionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		h.Logger.Error("Failed to parse execute request", "error", err)
		connectionmanager.SendErrorMessage(conn, defs.CodeInvalidPayload, "Invalid execute request data")
		return err
	}

	if req.Language == "" {
		connectionmanager.SendErrorMessage(conn, defs.CodeMissingLanguage, errs.MissingLanguage.Error())
		return nil
	}
	if req.Source == "" {
		connectionmanager.SendErrorMessage(conn, defs.CodeMissingCode, errs.MissingCode.Error())
		return nil
	}

	result, err := h.ExecService.Execute(ctx, &req)
	if err != nil {
		h.sendExecutionError(conn, err)
		return nil
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		h.Logger.Error("Failed to marshal execution result", "error", err)
		connectionmanager.SendErrorMessage(conn, defs.CodeInternalError, errs.InternalError.Error())
		return nil
	}

	return connectionmanager.SendMessage(conn, defs.MsgExecuteResult, resultBytes)
}

func (h *ExecuteHandler) sendExecutionError(conn net.Conn, err error) {
	switch {
	case errors.Is(err, errs.UnsupportedLanguage):
		connectionmanager.SendErrorMessage(conn, defs.CodeUnsupportedLanguage, errs.UnsupportedLanguage.Error())
	case errors.Is(err, errs.Busy):
		connectionmanager.SendErrorMessage(conn, defs.CodeBusy, errs.Busy.Error())
	default:
		h.Logger.Error("Execution failed", "error", err)
		connectionmanager.SendErrorMessage(conn, defs.CodeInternalError, errs.InternalError.Error())
	}
}
