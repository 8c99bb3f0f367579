package driver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/entrhq/phasma/pkg/logging"
)

// engineArgs are the fixed flags every engine invocation gets. SSL leniency
// avoids environment-dependent TLS negotiation failures with the legacy
// engine.
var engineArgs = []string{"--ssl-protocol=any", "--ignore-ssl-errors=true"}

// Driver owns one persistent PhantomJS process and its IPC channel files.
type Driver struct {
	opts Options
	fs   afero.Fs
	log  *logging.Logger

	// sendMu serializes command round trips: the single-slot mailbox
	// supports exactly one in-flight command.
	sendMu sync.Mutex

	mu         sync.Mutex
	started    bool
	closed     bool
	proc       *exec.Cmd
	exited     chan error
	stderr     *bytes.Buffer
	channels   *channelPair
	scriptPath string

	idMu   sync.Mutex
	lastID uint64
}

// New creates a Driver with the given options. The engine process is not
// spawned until Start.
func New(opts Options) *Driver {
	opts = opts.withDefaults()
	return &Driver{
		opts: opts,
		fs:   opts.Fs,
		log:  opts.Logger,
	}
}

// Start allocates the channel files, writes the bootstrap script, spawns
// the engine process, and blocks until the READY sentinel appears on its
// stdout. It returns a *StartupError if the process exits first or the
// startup timeout lapses; in both cases the process is reaped and no
// orphan is left running.
//
// Start is a no-op on a session that is already running.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.started {
		return nil
	}
	if d.opts.BinPath == "" {
		return fmt.Errorf("engine binary path is required")
	}

	channels, err := newChannelPair(d.fs, "")
	if err != nil {
		return err
	}

	script := buildBootstrapScript(scriptConfig{
		CommandPath:    channels.commandPath,
		ResponsePath:   channels.responsePath,
		ViewportWidth:  d.opts.ViewportWidth,
		ViewportHeight: d.opts.ViewportHeight,
		PollInterval:   d.opts.PollInterval,
		SettleDelay:    d.opts.SettleDelay,
	})

	scriptFile, err := afero.TempFile(d.fs, "", "phasma-*.js")
	if err != nil {
		_ = channels.remove()
		return fmt.Errorf("failed to create bootstrap script file: %w", err)
	}
	scriptPath := scriptFile.Name()
	if _, err := scriptFile.WriteString(script); err != nil {
		_ = scriptFile.Close()
		d.removeTempFiles(channels, scriptPath)
		return fmt.Errorf("failed to write bootstrap script: %w", err)
	}
	if err := scriptFile.Close(); err != nil {
		d.removeTempFiles(channels, scriptPath)
		return fmt.Errorf("failed to close bootstrap script file: %w", err)
	}

	args := append(append([]string{}, engineArgs...), scriptPath)
	args = append(args, d.opts.ExtraArgs...)
	cmd := exec.Command(d.opts.BinPath, args...)
	// Clearing OPENSSL_CONF avoids environment-dependent SSL config failures.
	cmd.Env = append(os.Environ(), "OPENSSL_CONF=")

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.removeTempFiles(channels, scriptPath)
		return fmt.Errorf("failed to open engine stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		d.removeTempFiles(channels, scriptPath)
		return fmt.Errorf("failed to spawn engine process: %w", err)
	}
	d.log.Infof("engine process started (pid %d)", cmd.Process.Pid)

	ready := make(chan struct{}, 1)
	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if strings.Contains(scanner.Text(), readySentinel) {
				select {
				case ready <- struct{}{}:
				default:
				}
			}
		}
	}()

	// The wait goroutine closes the channel after delivering the exit
	// error so any number of waiters can observe process exit.
	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
		close(exited)
	}()

	select {
	case <-ready:
	case waitErr := <-exited:
		d.removeTempFiles(channels, scriptPath)
		return &StartupError{
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    fmt.Errorf("engine exited before readiness: %w", normalizeWaitErr(waitErr)),
		}
	case <-time.After(d.opts.StartupTimeout):
		d.reapProcess(cmd, exited)
		d.removeTempFiles(channels, scriptPath)
		return &StartupError{
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    fmt.Errorf("no %s within %s", readySentinel, d.opts.StartupTimeout),
		}
	case <-ctx.Done():
		d.reapProcess(cmd, exited)
		d.removeTempFiles(channels, scriptPath)
		return fmt.Errorf("engine startup canceled: %w", ctx.Err())
	}

	d.proc = cmd
	d.exited = exited
	d.stderr = stderr
	d.channels = channels
	d.scriptPath = scriptPath
	d.started = true
	d.log.Infof("engine session ready")

	// Last-resort safety net for callers that drop the driver without
	// closing it. Explicit Close is the contract.
	runtime.SetFinalizer(d, (*Driver).finalize)
	return nil
}

// Close performs one graceful close round trip bounded by the close
// timeout, escalating to SIGTERM and then SIGKILL, and removes every
// temporary file. It is idempotent, and cleanup failures are logged rather
// than returned so Close can never fail and leak a non-closed state flag.
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	proc := d.proc
	exited := d.exited
	channels := d.channels
	scriptPath := d.scriptPath
	d.mu.Unlock()

	runtime.SetFinalizer(d, nil)

	if proc != nil && !processExited(exited) {
		d.shutdownProcess(proc, exited, channels)
	}

	if channels != nil {
		d.removeTempFiles(channels, scriptPath)
	}
	d.log.Infof("engine session closed")
	return nil
}

// shutdownProcess asks the engine to exit via the close command, then
// escalates to SIGTERM and SIGKILL as each grace period lapses.
func (d *Driver) shutdownProcess(proc *exec.Cmd, exited chan error, channels *channelPair) {
	if channels != nil {
		id := d.nextID()
		if payload, err := encodeCommand(id, closeCommand{}); err == nil {
			if err := channels.writeCommand(payload); err != nil {
				d.log.Warnf("failed to write close command: %v", err)
			} else {
				select {
				case <-exited:
					return
				case <-time.After(d.opts.CloseTimeout):
					d.log.Warnf("engine did not exit within %s after close command", d.opts.CloseTimeout)
				}
			}
		}
	}

	if err := proc.Process.Signal(syscall.SIGTERM); err != nil {
		d.log.Warnf("failed to terminate engine process: %v", err)
	}
	select {
	case <-exited:
		return
	case <-time.After(d.opts.KillTimeout):
	}

	if err := proc.Process.Kill(); err != nil {
		d.log.Warnf("failed to kill engine process: %v", err)
	}
	<-exited
}

// finalize is the implicit-cleanup safety net. It must never panic; it
// only logs and performs the same best-effort close sequence.
func (d *Driver) finalize() {
	defer func() {
		_ = recover()
	}()
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return
	}
	d.log.Warnf("driver finalized without explicit Close; cleaning up engine process")
	_ = d.Close()
}

// removeTempFiles deletes the channel files and the bootstrap script,
// swallowing deletion errors.
func (d *Driver) removeTempFiles(channels *channelPair, scriptPath string) {
	if channels != nil {
		if err := channels.remove(); err != nil {
			d.log.Warnf("failed to remove channel files: %v", err)
		}
	}
	if scriptPath != "" {
		if err := d.fs.Remove(scriptPath); err != nil && !os.IsNotExist(err) {
			d.log.Warnf("failed to remove bootstrap script: %v", err)
		}
	}
}

// reapProcess kills a process that never became ready and waits for it, so
// a readiness timeout cannot leave an orphan running.
func (d *Driver) reapProcess(cmd *exec.Cmd, exited chan error) {
	if err := cmd.Process.Kill(); err != nil {
		d.log.Warnf("failed to kill unready engine process: %v", err)
	}
	select {
	case <-exited:
	case <-time.After(d.opts.KillTimeout):
		d.log.Warnf("unready engine process did not exit after kill")
	}
}

func (d *Driver) nextID() uint64 {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	d.lastID++
	return d.lastID
}

// processExited reports whether the engine process has already been reaped.
func processExited(exited chan error) bool {
	if exited == nil {
		return true
	}
	select {
	case <-exited:
		return true
	default:
		return false
	}
}

func normalizeWaitErr(err error) error {
	if err == nil {
		return fmt.Errorf("clean exit")
	}
	return err
}
