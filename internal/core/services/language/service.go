package language

import (
	"github.com/codecampus/gradebox/internal/domain"
)

// IRegistryService defines the interface for the language registry
type IRegistryService interface {
	// Resolve returns the spec for a language ID. Unknown IDs fail with
	// errs.UnsupportedLanguage before any filesystem or process work.
	Resolve(id string) (domain.LanguageSpec, error)

	// List returns all supported language IDs, sorted
	List() []string

	// Specs returns all registered specs, sorted by ID
	Specs() []domain.LanguageSpec

	// Register adds or replaces a language spec
	Register(spec domain.LanguageSpec) error
}
