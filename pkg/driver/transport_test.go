package driver

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelPairAllocation(t *testing.T) {
	fs := afero.NewMemMapFs()
	ch, err := newChannelPair(fs, "")
	require.NoError(t, err)

	assert.NotEqual(t, ch.commandPath, ch.responsePath)
	for _, path := range []string{ch.commandPath, ch.responsePath} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.True(t, exists, "channel file %s should exist", path)
	}
}

func TestChannelPairWriteIsFullOverwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	ch, err := newChannelPair(fs, "")
	require.NoError(t, err)

	require.NoError(t, ch.writeCommand([]byte(`{"action":"navigate","params":{"url":"https://a.example"}}`)))
	require.NoError(t, ch.writeCommand([]byte(`{"x":1}`)))

	data, err := afero.ReadFile(fs, ch.commandPath)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(data), "a shorter write must fully replace the slot")
}

func TestChannelPairResponseLifecycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	ch, err := newChannelPair(fs, "")
	require.NoError(t, err)

	// Empty slot reads as not ready.
	_, ok, err := ch.readResponse()
	require.NoError(t, err)
	assert.False(t, ok)

	// Whitespace-only content is still not ready.
	require.NoError(t, afero.WriteFile(fs, ch.responsePath, []byte("  \n"), 0o600))
	_, ok, err = ch.readResponse()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, afero.WriteFile(fs, ch.responsePath, []byte(`{"type":"result","data":4}`), 0o600))
	data, ok, err := ch.readResponse()
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"result","data":4}`, string(data))

	// Clearing empties the slot so the next exchange cannot observe stale data.
	require.NoError(t, ch.clearResponse())
	_, ok, err = ch.readResponse()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChannelPairRemoveIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	ch, err := newChannelPair(fs, "")
	require.NoError(t, err)

	require.NoError(t, ch.remove())
	for _, path := range []string{ch.commandPath, ch.responsePath} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.False(t, exists)
	}

	// Removing already-missing files is not a failure.
	assert.NoError(t, ch.remove())
}
