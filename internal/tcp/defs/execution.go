package defs

import (
	"github.com/codecampus/gradebox/internal/domain"
)

// Protocol data structures
type (

	// LanguageListData represents the reply to a language listing request
	LanguageListData struct {
		Languages []domain.LanguageSpec `json:"languages"`
	}
)
