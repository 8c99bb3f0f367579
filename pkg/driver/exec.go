package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ExecScript runs the engine synchronously against a one-shot script,
// outside the persistent session. The paginated PDF renderer uses this
// path because the polling script cannot drive page.paperSize.
//
// The script is written to a temporary file, the engine is invoked with
// the same SSL flags and environment as the persistent session, and a
// non-zero exit surfaces as a *GenerationError carrying captured stderr.
func (d *Driver) ExecScript(ctx context.Context, script string, timeout time.Duration) ([]byte, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	bin := d.opts.BinPath
	d.mu.Unlock()

	if bin == "" {
		return nil, fmt.Errorf("engine binary path is required")
	}
	if timeout <= 0 {
		timeout = d.opts.CommandTimeout
	}

	// The engine reads the script from the real filesystem, so the
	// one-shot path bypasses the configured afero handle.
	scriptFile, err := os.CreateTemp("", "phasma-oneshot-*.js")
	if err != nil {
		return nil, fmt.Errorf("failed to create one-shot script file: %w", err)
	}
	scriptPath := scriptFile.Name()
	defer func() {
		if err := os.Remove(scriptPath); err != nil && !os.IsNotExist(err) {
			d.log.Warnf("failed to remove one-shot script: %v", err)
		}
	}()
	if _, err := scriptFile.WriteString(script); err != nil {
		_ = scriptFile.Close()
		return nil, fmt.Errorf("failed to write one-shot script: %w", err)
	}
	if err := scriptFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close one-shot script file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, engineArgs...), scriptPath)
	cmd := exec.CommandContext(runCtx, bin, args...)
	cmd.Env = append(os.Environ(), "OPENSSL_CONF=")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return stdout.Bytes(), nil
	}
	if runCtx.Err() != nil && ctx.Err() == nil {
		return nil, &TimeoutError{Action: "exec", Timeout: timeout}
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return nil, &GenerationError{
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return nil, fmt.Errorf("engine one-shot execution failed: %w", runErr)
}
