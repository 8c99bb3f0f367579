package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecScriptCapturesStdout(t *testing.T) {
	bin := writeStubEngine(t, `echo "rendered output"`)
	d := New(stubOptions(bin))

	out, err := d.ExecScript(context.Background(), "console.log('x');", time.Second)
	require.NoError(t, err)
	assert.Contains(t, string(out), "rendered output")
}

func TestExecScriptNonZeroExit(t *testing.T) {
	bin := writeStubEngine(t, "echo 'render failed' >&2\nexit 2")
	d := New(stubOptions(bin))

	_, err := d.ExecScript(context.Background(), "phantom.exit(2);", time.Second)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, 2, genErr.ExitCode)
	assert.Contains(t, genErr.Stderr, "render failed")
}

func TestExecScriptTimeout(t *testing.T) {
	bin := writeStubEngine(t, "exec sleep 60")
	d := New(stubOptions(bin))

	_, err := d.ExecScript(context.Background(), "while(true){}", 50*time.Millisecond)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "exec", timeoutErr.Action)
}

func TestExecScriptAfterClose(t *testing.T) {
	bin := writeStubEngine(t, "echo ok")
	d := New(stubOptions(bin))
	require.NoError(t, d.Close())

	_, err := d.ExecScript(context.Background(), "1", time.Second)
	assert.ErrorIs(t, err, ErrClosed)
}
