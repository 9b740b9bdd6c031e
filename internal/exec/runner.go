package exec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"time"

	relerrors "github.com/felixgeelhaar/releng/internal/errors"
	"github.com/felixgeelhaar/releng/internal/log"
)

// CommandRunner runs a command and returns the lines it printed after the
// result sentinel. Stage resolvers and the digest resolver depend on this.
type CommandRunner interface {
	Run(ctx context.Context, command []string) ([]string, error)
}

// Runner launches external commands, echoes their stdout to the console as
// it arrives and captures everything printed after ResultSentinel.
type Runner struct {
	// Echo receives every stdout line as soon as it is read (defaults to os.Stdout)
	Echo io.Writer
	// Stderr receives the child's stderr unchanged (defaults to os.Stderr)
	Stderr io.Writer
	Logger *log.Logger
}

// NewRunner creates a Runner echoing to stdout
func NewRunner(logger *log.Logger) *Runner {
	return &Runner{
		Echo:   os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run implements CommandRunner
func (r *Runner) Run(ctx context.Context, command []string) ([]string, error) {
	result, err := r.Execute(ctx, command)
	if err != nil {
		return nil, err
	}
	return result.Captured, nil
}

// Execute runs command to completion and reports what it printed.
// The exit code is recorded but never turned into an error.
func (r *Runner) Execute(ctx context.Context, command []string) (*Result, error) {
	logger := log.OrDefault(r.Logger)

	if len(command) == 0 || command[0] == "" {
		return nil, relerrors.NewProcessLaunchError(command, errors.New("empty command"))
	}

	startTime := time.Now()

	cmd := osexec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stderr = r.stderr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, relerrors.NewProcessLaunchError(command, err)
	}

	logger.DebugContext(ctx, "launching command", "command", strings.Join(command, " "))

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, relerrors.NewProcessLaunchError(command, err)
	}

	result := &Result{Captured: []string{}}
	readErr := r.scan(stdout, result)

	waitErr := cmd.Wait()
	result.Duration = time.Since(startTime)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if waitErr != nil {
		var exitErr *osexec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			logger.WarnContext(ctx, "waiting for command failed", "command", command[0], "error", waitErr)
		}
	}

	if readErr != nil {
		return nil, fmt.Errorf("failed to read output of %q: %w", strings.Join(command, " "), readErr)
	}

	logger.DebugContext(ctx, "command finished",
		"command", command[0],
		"exit_code", result.ExitCode,
		"lines", result.Lines,
		"captured", len(result.Captured),
		"sentinel_seen", result.SentinelSeen,
		"duration", result.Duration,
	)

	return result, nil
}

// scan reads stdout line by line until EOF. Lines are trimmed before being
// echoed, compared with the sentinel and captured.
func (r *Runner) scan(stdout io.Reader, result *Result) error {
	echo := r.echo()
	reader := bufio.NewReader(stdout)

	for {
		raw, err := reader.ReadString('\n')
		if len(raw) > 0 {
			line := strings.TrimSpace(raw)
			if result.SentinelSeen {
				result.Captured = append(result.Captured, line)
			}
			if line == ResultSentinel {
				result.SentinelSeen = true
			}
			result.Lines++
			fmt.Fprintln(echo, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (r *Runner) echo() io.Writer {
	if r.Echo != nil {
		return r.Echo
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

var _ CommandRunner = (*Runner)(nil)
