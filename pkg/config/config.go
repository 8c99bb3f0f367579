// Package config persists user-tunable defaults in ~/.phasma/config.json.
// Typed sections own their values and validation; a Manager moves them
// in and out of the JSON store.
package config

import (
	"sync"
)

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates the global configuration manager, registers the
// standard sections and loads persisted values. Call once at startup;
// an empty configPath uses the default location.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)
	if err := manager.RegisterSection(NewDriverSection()); err != nil {
		return err
	}
	if err := manager.RegisterSection(NewBrowserSection()); err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager. Panics if Initialize
// has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized reports whether the global configuration is ready.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetDriver returns the driver section from the global config, or nil
// if the config is not initialized.
func GetDriver() *DriverSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDDriver)
	if !ok {
		return nil
	}
	driverSection, ok := section.(*DriverSection)
	if !ok {
		return nil
	}
	return driverSection
}

// GetBrowser returns the browser section from the global config, or nil
// if the config is not initialized.
func GetBrowser() *BrowserSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDBrowser)
	if !ok {
		return nil
	}
	browserSection, ok := section.(*BrowserSection)
	if !ok {
		return nil
	}
	return browserSection
}
