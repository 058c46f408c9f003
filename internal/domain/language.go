package domain

// LanguageKind classifies how a language goes from source to running
// process. The set is closed: the sandbox switches over these three
// variants and nothing else.
type LanguageKind string

const (
	// KindInterpreted runs the source directly.
	KindInterpreted LanguageKind = "interpreted"
	// KindCompileThenRun compiles to an artifact first; compile failure is
	// a terminal outcome and the run step never starts.
	KindCompileThenRun LanguageKind = "compile_then_run"
	// KindCompileAndRun compiles and runs in a single invocation (go run).
	KindCompileAndRun LanguageKind = "compile_and_run"
)

// Command template tokens. The sandbox expands them just before spawning,
// since it owns the run-time values (artifact name, effective limits).
const (
	TokenSource = "<SOURCE>"
	TokenBinary = "<BINARY>"
	TokenMemory = "<MEMORY>"
)

// LanguageSpec describes one supported language: how its source file is
// named and how it is compiled and run inside a workspace.
type LanguageSpec struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Extension  string       `json:"extension"`
	SourceFile string       `json:"source_file"`
	Kind       LanguageKind `json:"kind"`
	CompileCmd []string     `json:"compile_cmd,omitempty"`
	RunCmd     []string     `json:"run_cmd"`
	// Artifact names the compiled binary for CompileThenRun languages.
	Artifact string `json:"artifact,omitempty"`
	// SoftMemory disables RLIMIT_AS for runtimes that reserve large
	// address spaces up front (JVM, go toolchain); the memory ceiling is
	// passed via TokenMemory instead and checked against max RSS.
	SoftMemory bool `json:"soft_memory,omitempty"`
}

// Compiled reports whether this language has a separate compile step.
func (s LanguageSpec) Compiled() bool {
	return s.Kind == KindCompileThenRun
}
