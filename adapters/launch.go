package adapters

// This file contains the process launch primitive shared by adapters that
// drive a locally launched target (games, desktop apps). It owns the
// graceful-terminate-then-kill shutdown path.

import (
	"bytes"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Process is a live handle to a launched target.
type Process struct {
	logger  zerolog.Logger
	cmd     *exec.Cmd
	output  bytes.Buffer
	done    chan struct{}
	waitErr error
	stopped bool
}

// Launch starts the target binary and waits up to readyWait for it to
// survive startup. A target that exits inside the readiness window is
// treated as a launch failure.
func Launch(logger zerolog.Logger, path string, args []string, readyWait time.Duration) (*Process, error) {
	cmd := exec.Command(path, args...)

	p := &Process{
		logger: logger,
		cmd:    cmd,
		done:   make(chan struct{}),
	}
	cmd.Stdout = &p.output
	cmd.Stderr = &p.output

	logger.Debug().
		Str("command", shellescape.QuoteCommand(append([]string{path}, args...))).
		Msg("Launching target process")

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to launch %s", path)
	}

	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	if readyWait > 0 {
		select {
		case <-p.done:
			reason := p.exitReason()
			if out := strings.TrimSpace(p.output.String()); out != "" {
				reason += ": " + out
			}
			return nil, errors.Errorf("%s exited during startup: %s", path, reason)
		case <-time.After(readyWait):
		}
	}

	logger.Debug().Int("pid", cmd.Process.Pid).Msg("Target process ready")
	return p, nil
}

// Running reports whether the target process is still alive.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Output returns the combined stdout/stderr of the target. Only valid after
// the process has exited; the buffer is still being written while Running.
func (p *Process) Output() string {
	return p.output.String()
}

// Stop terminates the target: graceful SIGTERM first, hard kill once the
// grace period elapses. Safe to call repeatedly and after the process has
// already exited.
func (p *Process) Stop(grace time.Duration) {
	if p.stopped {
		return
	}
	p.stopped = true

	if !p.Running() {
		return
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to signal target process")
	}

	select {
	case <-p.done:
	case <-time.After(grace):
		p.logger.Warn().Int("pid", p.cmd.Process.Pid).Msg("Target did not terminate gracefully, killing")
		if err := p.cmd.Process.Kill(); err != nil {
			p.logger.Debug().Err(err).Msg("Failed to kill target process")
		}
		<-p.done
	}
}

func (p *Process) exitReason() string {
	if p.waitErr == nil {
		return "exit status 0"
	}
	return p.waitErr.Error()
}
