package language

import (
	"fmt"
	"sort"
	"sync"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/domain"
	"github.com/codecampus/gradebox/internal/static/errs"
)

var _ IRegistryService = (*RegistryService)(nil)

// RegistryService implements the language registry with an in-memory
// table seeded with the built-in languages.
type RegistryService struct {
	mu     sync.RWMutex
	specs  map[string]domain.LanguageSpec
	logger primary.Logger
}

// NewRegistryService creates a registry seeded with the built-in table
func NewRegistryService(logger primary.Logger) *RegistryService {
	r := &RegistryService{
		specs:  make(map[string]domain.LanguageSpec),
		logger: logger,
	}
	for _, spec := range builtinSpecs() {
		// Built-in entries are well formed; Register cannot fail here.
		_ = r.Register(spec)
	}
	return r
}

// Resolve returns the spec for a language ID
func (r *RegistryService) Resolve(id string) (domain.LanguageSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[id]
	if !ok {
		return domain.LanguageSpec{}, fmt.Errorf("%w: %s", errs.UnsupportedLanguage, id)
	}
	return spec, nil
}

// List returns all supported language IDs, sorted
func (r *RegistryService) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.specs))
	for id := range r.specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Specs returns all registered specs, sorted by ID
func (r *RegistryService) Specs() []domain.LanguageSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]domain.LanguageSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}

// Register adds or replaces a language spec
func (r *RegistryService) Register(spec domain.LanguageSpec) error {
	if err := validateSpec(spec); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.ID]; exists {
		r.logger.Warn("Replacing language spec", "language", spec.ID)
	}
	r.specs[spec.ID] = spec
	return nil
}

func validateSpec(spec domain.LanguageSpec) error {
	if spec.ID == "" {
		return fmt.Errorf("%w: empty id", errs.InvalidLanguageSpec)
	}
	if spec.SourceFile == "" {
		return fmt.Errorf("%w: %s has no source file name", errs.InvalidLanguageSpec, spec.ID)
	}
	if len(spec.RunCmd) == 0 {
		return fmt.Errorf("%w: %s has no run command", errs.InvalidLanguageSpec, spec.ID)
	}
	switch spec.Kind {
	case domain.KindInterpreted, domain.KindCompileAndRun:
		if len(spec.CompileCmd) != 0 {
			return fmt.Errorf("%w: %s is not compiled but has a compile command", errs.InvalidLanguageSpec, spec.ID)
		}
	case domain.KindCompileThenRun:
		if len(spec.CompileCmd) == 0 {
			return fmt.Errorf("%w: %s is compiled but has no compile command", errs.InvalidLanguageSpec, spec.ID)
		}
	default:
		return fmt.Errorf("%w: %s has unknown kind %q", errs.InvalidLanguageSpec, spec.ID, spec.Kind)
	}
	return nil
}

// builtinSpecs is the fixed language table: one toolchain per ID.
func builtinSpecs() []domain.LanguageSpec {
	return []domain.LanguageSpec{
		{
			ID:         "python",
			Name:       "Python 3",
			Extension:  ".py",
			SourceFile: "main.py",
			Kind:       domain.KindInterpreted,
			RunCmd:     []string{"python3", domain.TokenSource},
		},
		{
			ID:         "javascript",
			Name:       "Node.js",
			Extension:  ".js",
			SourceFile: "main.js",
			Kind:       domain.KindInterpreted,
			RunCmd:     []string{"node", domain.TokenSource},
		},
		{
			ID:         "java",
			Name:       "Java",
			Extension:  ".java",
			SourceFile: "Main.java",
			Kind:       domain.KindCompileThenRun,
			CompileCmd: []string{"javac", domain.TokenSource},
			// The JVM reserves far more address space than it uses, so the
			// heap cap rides in as -Xmx instead of RLIMIT_AS.
			RunCmd:     []string{"java", "-Xmx" + domain.TokenMemory, "-cp", ".", "Main"},
			Artifact:   "Main.class",
			SoftMemory: true,
		},
		{
			ID:         "cpp",
			Name:       "C++",
			Extension:  ".cpp",
			SourceFile: "main.cpp",
			Kind:       domain.KindCompileThenRun,
			CompileCmd: []string{"g++", "-O2", domain.TokenSource, "-o", domain.TokenBinary},
			RunCmd:     []string{"./" + domain.TokenBinary},
			Artifact:   "main",
		},
		{
			ID:         "go",
			Name:       "Go",
			Extension:  ".go",
			SourceFile: "main.go",
			Kind:       domain.KindCompileAndRun,
			// go run compiles in-process; RLIMIT_AS would kill the
			// toolchain before user code starts.
			RunCmd:     []string{"go", "run", domain.TokenSource},
			SoftMemory: true,
		},
	}
}
