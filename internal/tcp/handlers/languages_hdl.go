package handlers

import (
	"context"
	"encoding/json"
	"net"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/services/language"
	"github.com/codecampus/gradebox/internal/tcp/connectionmanager"
	"github.com/codecampus/gradebox/internal/tcp/defs"
)

// ListLanguagesHandler handles language listing messages
type ListLanguagesHandler struct {
	Registry language.IRegistryService
	Logger   primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *ListLanguagesHandler) HandleMessage(ctx context.Context, conn net.Conn, payload []byte) error {
	listData := defs.LanguageListData{
		Languages: h.Registry.Specs(),
	}

	listBytes, err := json.Marshal(listData)
	if err != nil {
		h.Logger.Error("Failed to marshal language list", "error", err)
		connectionmanager.SendErrorMessage(conn, defs.CodeInternalError, "internal error")
		return nil
	}

	return connectionmanager.SendMessage(conn, defs.MsgLanguageList, listBytes)
}
