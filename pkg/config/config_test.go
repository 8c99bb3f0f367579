package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobal clears the singleton between tests.
func resetGlobal(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		globalMu.Lock()
		globalManager = nil
		globalMu.Unlock()
	})
	globalMu.Lock()
	globalManager = nil
	globalMu.Unlock()
}

func TestInitializeAndGlobal(t *testing.T) {
	resetGlobal(t)
	path := filepath.Join(t.TempDir(), "config.json")

	require.False(t, IsInitialized())
	require.NoError(t, Initialize(path))
	require.True(t, IsInitialized())

	manager := Global()
	sections := manager.GetSections()
	require.Len(t, sections, 2)
	assert.Equal(t, SectionIDDriver, sections[0].ID())
	assert.Equal(t, SectionIDBrowser, sections[1].ID())
}

func TestGlobalPanicsWithoutInitialize(t *testing.T) {
	resetGlobal(t)
	assert.Panics(t, func() { Global() })
}

func TestTypedAccessors(t *testing.T) {
	resetGlobal(t)

	assert.Nil(t, GetDriver())
	assert.Nil(t, GetBrowser())

	require.NoError(t, Initialize(filepath.Join(t.TempDir(), "config.json")))
	require.NotNil(t, GetDriver())
	require.NotNil(t, GetBrowser())
	assert.Equal(t, "A4", GetBrowser().PDFFormat())
}

func TestInitializeLoadsPersistedValues(t *testing.T) {
	resetGlobal(t)
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, Initialize(path))
	driverSection := GetDriver()
	require.NoError(t, driverSection.SetData(map[string]any{"bin_path": "/opt/phantomjs"}))
	require.NoError(t, Global().SaveAll())

	resetGlobal(t)
	require.NoError(t, Initialize(path))
	assert.Equal(t, "/opt/phantomjs", GetDriver().BinPath())
}
