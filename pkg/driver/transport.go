package driver

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// channelPair is the filesystem half of the IPC protocol: two uniquely
// named temporary files acting as single-slot mailboxes, one per direction.
// Writers always truncate-and-write the full payload so a reader never has
// to reason about appends; a reader that sees partial JSON treats the slot
// as not ready and retries.
type channelPair struct {
	fs           afero.Fs
	commandPath  string
	responsePath string
}

// newChannelPair allocates the command and response mailbox files in dir
// (or the default temp directory when dir is empty).
func newChannelPair(fs afero.Fs, dir string) (*channelPair, error) {
	cmdFile, err := afero.TempFile(fs, dir, "phasma-*.cmd")
	if err != nil {
		return nil, fmt.Errorf("failed to create command channel file: %w", err)
	}
	cmdPath := cmdFile.Name()
	if err := cmdFile.Close(); err != nil {
		_ = fs.Remove(cmdPath)
		return nil, fmt.Errorf("failed to close command channel file: %w", err)
	}

	rspFile, err := afero.TempFile(fs, dir, "phasma-*.rsp")
	if err != nil {
		_ = fs.Remove(cmdPath)
		return nil, fmt.Errorf("failed to create response channel file: %w", err)
	}
	rspPath := rspFile.Name()
	if err := rspFile.Close(); err != nil {
		_ = fs.Remove(cmdPath)
		_ = fs.Remove(rspPath)
		return nil, fmt.Errorf("failed to close response channel file: %w", err)
	}

	return &channelPair{
		fs:           fs,
		commandPath:  cmdPath,
		responsePath: rspPath,
	}, nil
}

// writeCommand replaces the command slot with payload in a single
// truncating write.
func (c *channelPair) writeCommand(payload []byte) error {
	if err := afero.WriteFile(c.fs, c.commandPath, payload, 0o600); err != nil {
		return fmt.Errorf("failed to write command channel: %w", err)
	}
	return nil
}

// readResponse returns the current response slot content. The second
// return value reports whether a non-empty payload was present.
func (c *channelPair) readResponse() ([]byte, bool, error) {
	data, err := afero.ReadFile(c.fs, c.responsePath)
	if err != nil {
		return nil, false, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, false, nil
	}
	return []byte(trimmed), true, nil
}

// clearResponse empties the response slot so the next exchange can never
// observe stale data from a prior one.
func (c *channelPair) clearResponse() error {
	return afero.WriteFile(c.fs, c.responsePath, nil, 0o600)
}

// clearCommand empties the command slot.
func (c *channelPair) clearCommand() error {
	return afero.WriteFile(c.fs, c.commandPath, nil, 0o600)
}

// remove deletes both channel files. Missing files are not failures;
// remove is safe to call any number of times.
func (c *channelPair) remove() error {
	var firstErr error
	for _, path := range []string{c.commandPath, c.responsePath} {
		if err := c.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
