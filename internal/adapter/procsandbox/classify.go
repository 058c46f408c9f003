package procsandbox

import (
	"fmt"
	"syscall"
	"time"

	"github.com/codecampus/gradebox/internal/domain"
)

// runUsage is what wait4 told us about a finished child.
type runUsage struct {
	exitCode int            // -1 when the child was signaled
	signal   syscall.Signal // 0 when the child exited normally
	cpuTime  time.Duration  // user + system
	maxRSSKB int64
}

// classifyOutcome maps a finished run to its terminal status. Pure so
// the mapping is testable without spawning anything.
//
// Shells report a fatal signal in a foreground child as exit 128+sig,
// which matters when the limited program is itself an interpreter, so
// those exit codes are treated like the signal they encode.
func classifyOutcome(u runUsage, limits domain.SandboxLimits, softMemory bool) (domain.Status, string) {
	cpuExceeded := u.signal == syscall.SIGXCPU ||
		u.exitCode == 128+int(syscall.SIGXCPU) ||
		(u.signal == syscall.SIGKILL && limits.CPUTime > 0 && u.cpuTime >= limits.CPUTime)
	if cpuExceeded {
		return domain.StatusResourceLimitExceeded,
			fmt.Sprintf("CPU time limit exceeded (%ds)", cpuSeconds(limits.CPUTime))
	}

	if u.signal == syscall.SIGXFSZ || u.exitCode == 128+int(syscall.SIGXFSZ) {
		return domain.StatusResourceLimitExceeded, "output size limit exceeded"
	}

	if !softMemory && limits.MemoryBytes > 0 && u.maxRSSKB<<10 >= limits.MemoryBytes {
		return domain.StatusResourceLimitExceeded,
			fmt.Sprintf("memory limit exceeded (%dMB)", limits.MemoryBytes>>20)
	}

	if u.signal != 0 {
		return domain.StatusRuntimeError, fmt.Sprintf("terminated by signal: %s", u.signal)
	}
	if u.exitCode != 0 {
		return domain.StatusRuntimeError, fmt.Sprintf("exited with status %d", u.exitCode)
	}
	return domain.StatusSuccess, ""
}
