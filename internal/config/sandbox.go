package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/codecampus/gradebox/internal/domain"
)

// SandboxConfig holds the workspace location and resource ceilings for
// sandboxed runs.
type SandboxConfig struct {
	WorkspaceRoot  string
	WallTimeSec    int
	CPUTimeSec     int
	CompileTimeSec int
	MemoryLimitMB  int
	OutputLimitKB  int
}

func NewSandboxConfig() *SandboxConfig {
	return &SandboxConfig{
		WorkspaceRoot:  getEnv("SANDBOX_ROOT", filepath.Join(os.TempDir(), "gradebox")),
		WallTimeSec:    getIntEnv("SANDBOX_WALL_TIME_SEC", 10),
		CPUTimeSec:     getIntEnv("SANDBOX_CPU_TIME_SEC", 10),
		CompileTimeSec: getIntEnv("SANDBOX_COMPILE_TIME_SEC", 30),
		MemoryLimitMB:  getIntEnv("SANDBOX_MEMORY_LIMIT_MB", 256),
		OutputLimitKB:  getIntEnv("SANDBOX_OUTPUT_LIMIT_KB", 1024),
	}
}

// Limits materializes the configured ceilings as the value object passed
// through every sandbox call.
func (c *SandboxConfig) Limits() domain.SandboxLimits {
	return domain.SandboxLimits{
		WallTime:    time.Duration(c.WallTimeSec) * time.Second,
		CPUTime:     time.Duration(c.CPUTimeSec) * time.Second,
		CompileTime: time.Duration(c.CompileTimeSec) * time.Second,
		MemoryBytes: int64(c.MemoryLimitMB) << 20,
		OutputBytes: int64(c.OutputLimitKB) << 10,
	}
}
