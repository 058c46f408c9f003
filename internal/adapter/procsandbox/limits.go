package procsandbox

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/codecampus/gradebox/internal/domain"
)

// wrapWithRlimits prefixes argv with a shell prelude that installs the
// resource limits inside the child before exec'ing the real program, so
// the ceilings bind the sandboxed process and none of its ancestors.
// One ulimit statement per resource: dash accepts only a single resource
// flag per invocation.
//
// Units: -t is CPU seconds, -v is KiB, -f is 512-byte blocks (bash uses
// 1024-byte blocks; the parent-side capture cap governs what callers see
// either way).
func wrapWithRlimits(argv []string, limits domain.SandboxLimits, softMemory bool) []string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ulimit -S -t %d; ", cpuSeconds(limits.CPUTime))
	if limits.OutputBytes > 0 {
		fmt.Fprintf(&sb, "ulimit -S -f %d; ", fsizeBlocks(limits.OutputBytes))
	}
	if !softMemory && limits.MemoryBytes > 0 {
		fmt.Fprintf(&sb, "ulimit -S -v %d; ", limits.MemoryBytes>>10)
	}
	sb.WriteString(`exec "$0" "$@"`)

	wrapped := make([]string, 0, len(argv)+3)
	wrapped = append(wrapped, "/bin/sh", "-c", sb.String())
	wrapped = append(wrapped, argv...)
	return wrapped
}

func cpuSeconds(d time.Duration) int64 {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func fsizeBlocks(b int64) int64 {
	blocks := (b + 511) / 512
	if blocks < 1 {
		blocks = 1
	}
	return blocks
}

// expandArgv substitutes command template tokens in every argument.
func expandArgv(tmpl []string, vars map[string]string) []string {
	out := make([]string, len(tmpl))
	for i, arg := range tmpl {
		for token, value := range vars {
			arg = strings.ReplaceAll(arg, token, value)
		}
		out[i] = arg
	}
	return out
}

// memoryArg renders a byte count the way JVM-style flags expect it.
func memoryArg(b int64) string {
	mb := b >> 20
	if mb < 16 {
		mb = 16
	}
	return strconv.FormatInt(mb, 10) + "m"
}

// sandboxEnv is the minimal environment a run sees. HOME and TMPDIR
// point into the workspace so runtimes that insist on writing somewhere
// (go build cache, JVM temp files) stay inside it.
func sandboxEnv(dir string) []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + dir,
		"TMPDIR=" + dir,
		"LANG=C.UTF-8",
	}
}
