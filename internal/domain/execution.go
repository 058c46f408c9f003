package domain

import "time"

// Status represents the terminal outcome of an execution
type Status string

const (
	StatusSuccess               Status = "SUCCESS"
	StatusCompilationError      Status = "COMPILATION_ERROR"
	StatusRuntimeError          Status = "RUNTIME_ERROR"
	StatusTimeout               Status = "TIMEOUT"
	StatusResourceLimitExceeded Status = "RESOURCE_LIMIT_EXCEEDED"
	StatusInternalError         Status = "INTERNAL_ERROR"
)

// ExecutionRequest represents a single run of source code against one stdin
type ExecutionRequest struct {
	Language string `json:"language"`
	Source   string `json:"source"`
	Stdin    string `json:"stdin"`
}

// ExecutionResult represents the outcome of one sandboxed run. Every
// student-visible outcome travels here, compilation errors included;
// only infrastructure faults surface as Go errors.
type ExecutionResult struct {
	Status          Status `json:"status"`
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	StdoutTruncated bool   `json:"stdout_truncated"`
	StderrTruncated bool   `json:"stderr_truncated"`
	ExitCode        int    `json:"return_code"`
	Success         bool   `json:"success"`
	ErrorMessage    string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	CompileTimeMs   int64  `json:"compile_time_ms,omitempty"`
	MemoryUsedKB    int64  `json:"memory_used_kb"`
}

// SandboxLimits carries the resource ceilings for one sandboxed run.
// Limits are built once from configuration and passed explicitly through
// every call; nothing below the service layer reads limit globals.
type SandboxLimits struct {
	// WallTime bounds the run step in real time, enforced by the parent.
	WallTime time.Duration
	// CPUTime becomes RLIMIT_CPU in the child, whole seconds.
	CPUTime time.Duration
	// CompileTime bounds the compile step in real time.
	CompileTime time.Duration
	// MemoryBytes becomes RLIMIT_AS in the child.
	MemoryBytes int64
	// OutputBytes becomes RLIMIT_FSIZE in the child and caps how much of
	// each output stream the parent retains.
	OutputBytes int64
}

// DefaultSandboxLimits returns the stock quota set
func DefaultSandboxLimits() SandboxLimits {
	return SandboxLimits{
		WallTime:    10 * time.Second,
		CPUTime:     10 * time.Second,
		CompileTime: 30 * time.Second,
		MemoryBytes: 256 << 20,
		OutputBytes: 1 << 20,
	}
}
