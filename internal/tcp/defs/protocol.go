package defs

import "time"

// Protocol constants
const (
	MagicNumber uint16 = 0xFACE

	// Message types
	MsgExecuteRequest byte = 0x01
	MsgExecuteResult  byte = 0x02
	MsgListLanguages  byte = 0x03
	MsgLanguageList   byte = 0x04
	MsgPing           byte = 0x05
	MsgPong           byte = 0x06
	MsgError          byte = 0x07

	// Configuration constants
	ReadIdleTimeout      = 5 * time.Minute
	ConnectionRetryDelay = 1 * time.Second

	// MaxPayloadBytes caps a single frame. The length field is untrusted
	// input; without the cap one bogus header allocates 4GB.
	MaxPayloadBytes = 4 << 20
)

// Error codes sent with MsgError
const (
	CodeInvalidPayload      = 1001
	CodeMissingLanguage     = 1002
	CodeMissingCode         = 1003
	CodeUnsupportedLanguage = 1004
	CodeBusy                = 1005
	CodeInternalError       = 1006
	CodeUnknownMessageType  = 1007
	CodeShuttingDown        = 1008
)
