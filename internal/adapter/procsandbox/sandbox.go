// Package procsandbox executes untrusted code with plain OS processes:
// one throwaway workspace per run, rlimits installed inside the child,
// and the run's whole process group killed on deadline.
package procsandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/codecampus/gradebox/internal/core/ports/primary"
	"github.com/codecampus/gradebox/internal/core/ports/secondary"
	"github.com/codecampus/gradebox/internal/domain"
)

// pipeGrace bounds how long Wait lingers on open pipes after the child
// exits (a backgrounded grandchild can hold them).
const pipeGrace = 2 * time.Second

var _ secondary.Sandbox = (*ProcSandbox)(nil)

// ProcSandbox implements the Sandbox port
type ProcSandbox struct {
	root   string
	logger primary.Logger
}

// NewProcSandbox creates a sandbox rooted at the given directory
func NewProcSandbox(root string, logger primary.Logger) (*ProcSandbox, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sandbox root: %w", err)
	}
	return &ProcSandbox{root: root, logger: logger}, nil
}

// Run executes one compile-and-run pipeline inside a fresh workspace
func (s *ProcSandbox) Run(ctx context.Context, spec domain.LanguageSpec, req *domain.ExecutionRequest, limits domain.SandboxLimits) (*domain.ExecutionResult, error) {
	ws, err := newWorkspace(s.root)
	if err != nil {
		s.logger.Error("Failed to create workspace", "error", err)
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			s.logger.Warn("Failed to remove workspace", "dir", ws.dir, "error", err)
		}
	}()

	if err := ws.WriteSource(spec.SourceFile, req.Source); err != nil {
		s.logger.Error("Failed to write source", "language", spec.ID, "error", err)
		return nil, err
	}

	vars := map[string]string{
		domain.TokenSource: spec.SourceFile,
		domain.TokenBinary: spec.Artifact,
		domain.TokenMemory: memoryArg(limits.MemoryBytes),
	}

	var compileMs int64
	if spec.Compiled() {
		result, elapsed, err := s.compile(ctx, ws, spec, vars, limits)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		compileMs = elapsed.Milliseconds()
	}

	result, err := s.runStep(ctx, ws, spec, vars, req.Stdin, limits)
	if err != nil {
		return nil, err
	}
	result.CompileTimeMs = compileMs
	return result, nil
}

// compile runs the compiler inside the workspace under its own deadline.
// A nil result means compilation succeeded and the run step may start.
// Compilers get the compile deadline as their CPU budget and are never
// address-space limited: javac is itself a JVM.
func (s *ProcSandbox) compile(ctx context.Context, ws *workspace, spec domain.LanguageSpec, vars map[string]string, limits domain.SandboxLimits) (*domain.ExecutionResult, time.Duration, error) {
	argv := expandArgv(spec.CompileCmd, vars)

	climits := limits
	climits.CPUTime = limits.CompileTime

	cctx, cancel := context.WithTimeout(ctx, limits.CompileTime)
	defer cancel()

	proc, err := s.spawn(cctx, ws, argv, "", climits, true)
	if err != nil {
		return nil, 0, err
	}
	if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}

	if cctx.Err() == context.DeadlineExceeded {
		s.logger.Warn("Compilation timed out", "language", spec.ID, "limit", limits.CompileTime)
		return &domain.ExecutionResult{
			Status:          domain.StatusCompilationError,
			Stdout:          proc.stdout.String(),
			Stderr:          proc.stderr.String(),
			StdoutTruncated: proc.stdout.Truncated(),
			StderrTruncated: proc.stderr.Truncated(),
			ExitCode:        proc.usage.exitCode,
			ErrorMessage:    fmt.Sprintf("compilation timed out after %s", limits.CompileTime),
			CompileTimeMs:   proc.elapsed.Milliseconds(),
			MemoryUsedKB:    proc.usage.maxRSSKB,
		}, proc.elapsed, nil
	}

	if proc.usage.exitCode != 0 || proc.usage.signal != 0 {
		s.logger.Debug("Compilation failed", "language", spec.ID, "exitCode", proc.usage.exitCode)
		return &domain.ExecutionResult{
			Status:          domain.StatusCompilationError,
			Stdout:          proc.stdout.String(),
			Stderr:          proc.stderr.String(),
			StdoutTruncated: proc.stdout.Truncated(),
			StderrTruncated: proc.stderr.Truncated(),
			ExitCode:        proc.usage.exitCode,
			ErrorMessage:    "compilation failed",
			CompileTimeMs:   proc.elapsed.Milliseconds(),
			MemoryUsedKB:    proc.usage.maxRSSKB,
		}, proc.elapsed, nil
	}

	return nil, proc.elapsed, nil
}

// runStep executes the program under the wall-clock deadline
func (s *ProcSandbox) runStep(ctx context.Context, ws *workspace, spec domain.LanguageSpec, vars map[string]string, stdin string, limits domain.SandboxLimits) (*domain.ExecutionResult, error) {
	argv := expandArgv(spec.RunCmd, vars)

	rctx, cancel := context.WithTimeout(ctx, limits.WallTime)
	defer cancel()

	proc, err := s.spawn(rctx, ws, argv, stdin, limits, spec.SoftMemory)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		// The caller is gone; the group kill already happened.
		return nil, ctx.Err()
	}

	result := &domain.ExecutionResult{
		Stdout:          proc.stdout.String(),
		Stderr:          proc.stderr.String(),
		StdoutTruncated: proc.stdout.Truncated(),
		StderrTruncated: proc.stderr.Truncated(),
		ExitCode:        proc.usage.exitCode,
		ExecutionTimeMs: proc.elapsed.Milliseconds(),
		MemoryUsedKB:    proc.usage.maxRSSKB,
	}

	if rctx.Err() == context.DeadlineExceeded {
		result.Status = domain.StatusTimeout
		result.ErrorMessage = fmt.Sprintf("execution timed out after %s", limits.WallTime)
		return result, nil
	}

	status, detail := classifyOutcome(proc.usage, limits, spec.SoftMemory)
	result.Status = status
	result.Success = status == domain.StatusSuccess
	result.ErrorMessage = detail
	return result, nil
}

// procOutcome carries everything spawn learned about one child
type procOutcome struct {
	stdout  *cappedBuffer
	stderr  *cappedBuffer
	usage   runUsage
	elapsed time.Duration
}

// spawn starts argv under the rlimit prelude in its own process group,
// waits for it, and sweeps stragglers left in the group. ctx expiry
// kills the whole group, not just the leader.
func (s *ProcSandbox) spawn(ctx context.Context, ws *workspace, argv []string, stdin string, limits domain.SandboxLimits, softMemory bool) (*procOutcome, error) {
	wrapped := wrapWithRlimits(argv, limits, softMemory)

	cmd := exec.CommandContext(ctx, wrapped[0], wrapped[1:]...)
	cmd.Dir = ws.dir
	cmd.Env = sandboxEnv(ws.dir)
	cmd.Stdin = strings.NewReader(stdin)

	stdout := newCappedBuffer(limits.OutputBytes)
	stderr := newCappedBuffer(limits.OutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid addresses the whole group.
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = pipeGrace

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start process: %w", err)
	}
	pgid := cmd.Process.Pid

	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	// Anything the program left running in its group dies with it.
	_ = syscall.Kill(-pgid, syscall.SIGKILL)

	if cmd.ProcessState == nil {
		return nil, fmt.Errorf("failed to wait for process: %w", waitErr)
	}

	out := &procOutcome{stdout: stdout, stderr: stderr, elapsed: elapsed}
	state := cmd.ProcessState
	out.usage.exitCode = state.ExitCode()
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		out.usage.signal = status.Signal()
	}
	if ru, ok := state.SysUsage().(*syscall.Rusage); ok && ru != nil {
		out.usage.maxRSSKB = ru.Maxrss
		out.usage.cpuTime = time.Duration(ru.Utime.Sec+ru.Stime.Sec)*time.Second +
			time.Duration(ru.Utime.Usec+ru.Stime.Usec)*time.Microsecond
	}
	return out, nil
}
