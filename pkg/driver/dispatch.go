package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// Send performs one command round trip: it writes the encoded command to
// the command channel and polls the response channel until a response with
// the matching request id appears or the timeout lapses. A non-positive
// timeout uses the configured default.
//
// Responses that fail to parse are treated as not-yet-written and retried;
// responses carrying a stale request id are cleared and discarded. An
// engine-reported error surfaces immediately as a *ProtocolError.
func (d *Driver) Send(ctx context.Context, cmd Command, timeout time.Duration) (any, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = d.opts.CommandTimeout
	}

	d.sendMu.Lock()
	defer d.sendMu.Unlock()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrClosed
	}
	if !d.started {
		d.mu.Unlock()
		return nil, ErrNotStarted
	}
	channels := d.channels
	exited := d.exited
	d.mu.Unlock()

	if processExited(exited) {
		return nil, fmt.Errorf("%w: engine process has exited", ErrClosed)
	}

	id := d.nextID()
	payload, err := encodeCommand(id, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}

	// Drop any stale response a previously timed-out command left behind.
	if err := channels.clearResponse(); err != nil {
		return nil, fmt.Errorf("failed to clear response channel: %w", err)
	}
	if err := channels.writeCommand(payload); err != nil {
		return nil, err
	}

	return d.awaitResponse(ctx, channels, exited, cmd.action(), id, timeout)
}

// awaitResponse polls the response channel on the configured interval. A
// filesystem watcher, when available, provides lower-latency wakeups; the
// poll ticker remains the correctness mechanism.
func (d *Driver) awaitResponse(
	ctx context.Context,
	channels *channelPair,
	exited chan error,
	action string,
	id uint64,
	timeout time.Duration,
) (any, error) {
	wake, stopWatch := d.watchResponse(channels.responsePath)
	defer stopWatch()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(d.opts.PollInterval)
	defer tick.Stop()

	for {
		data, ok, err := channels.readResponse()
		if err == nil && ok {
			var resp response
			if jsonErr := json.Unmarshal(data, &resp); jsonErr != nil {
				// Likely a response file caught mid-write; not ready yet.
				d.log.Debugf("unparseable response payload, retrying: %v", jsonErr)
			} else if resp.ID != id {
				if err := channels.clearResponse(); err != nil {
					return nil, fmt.Errorf("failed to clear response channel: %w", err)
				}
				d.log.Warnf("discarding stale response (id %d, want %d)", resp.ID, id)
			} else {
				if err := channels.clearResponse(); err != nil {
					return nil, fmt.Errorf("failed to clear response channel: %w", err)
				}
				if resp.Type == responseTypeError {
					return nil, &ProtocolError{Message: resp.Message}
				}
				return resp.Data, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, &TimeoutError{Action: action, Timeout: timeout}
		case <-tick.C:
		case <-wake:
		}
	}
}

// watchResponse arms a best-effort fsnotify watcher on the response file's
// directory. It returns a nil channel (which blocks forever in select) when
// notification is unavailable, e.g. on an in-memory filesystem.
func (d *Driver) watchResponse(path string) (<-chan struct{}, func()) {
	noop := func() {}
	if _, isOS := d.fs.(*afero.OsFs); !isOS {
		return nil, noop
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, noop
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, noop
	}

	wake := make(chan struct{}, 1)
	go func() {
		for event := range watcher.Events {
			if event.Name == path && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		}
	}()
	return wake, func() { _ = watcher.Close() }
}

// Navigate loads the URL in the persistent page and returns the serialized
// document markup observed after the settle delay.
func (d *Driver) Navigate(ctx context.Context, url string) (string, error) {
	data, err := d.Send(ctx, Navigate{URL: url}, 0)
	if err != nil {
		return "", err
	}
	markup, ok := data.(string)
	if !ok {
		return "", &ProtocolError{Message: fmt.Sprintf("navigate returned non-string payload %T", data)}
	}
	return markup, nil
}

// Evaluate runs a JavaScript expression in the page context.
func (d *Driver) Evaluate(ctx context.Context, expression string) (any, error) {
	return d.Send(ctx, Evaluate{Expression: expression}, 0)
}

// Click clicks the first element matching the selector. It returns false
// when no element matches; that is not an error at this layer.
func (d *Driver) Click(ctx context.Context, selector string) (bool, error) {
	data, err := d.Send(ctx, Click{Selector: selector}, 0)
	if err != nil {
		return false, err
	}
	clicked, _ := data.(bool)
	return clicked, nil
}

// Fill sets the value of the first element matching the selector. It
// returns false when no element matches.
func (d *Driver) Fill(ctx context.Context, selector, value string) (bool, error) {
	data, err := d.Send(ctx, Fill{Selector: selector, Value: value}, 0)
	if err != nil {
		return false, err
	}
	filled, _ := data.(bool)
	return filled, nil
}

// Screenshot renders the current page to path on the local filesystem.
func (d *Driver) Screenshot(ctx context.Context, path string) error {
	_, err := d.Send(ctx, Screenshot{Path: path}, 0)
	return err
}
