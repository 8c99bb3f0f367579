package config

import (
	"fmt"
	"time"

	"github.com/entrhq/phasma/pkg/driver"
)

// SectionIDDriver is the identifier for the engine driver section.
const SectionIDDriver = "driver"

// DriverSection holds persistent defaults for the engine driver:
// which binary to spawn, protocol timing, and the viewport. Zero values
// mean "use the built-in default".
type DriverSection struct {
	binPath string

	startupTimeoutMS int
	commandTimeoutMS int
	pollIntervalMS   int
	settleDelayMS    int

	viewportWidth  int
	viewportHeight int
}

// NewDriverSection creates a driver section with built-in defaults.
func NewDriverSection() *DriverSection {
	return &DriverSection{}
}

// ID returns the section identifier.
func (s *DriverSection) ID() string { return SectionIDDriver }

// Title returns the section title.
func (s *DriverSection) Title() string { return "Engine Driver" }

// Description returns the section description.
func (s *DriverSection) Description() string {
	return "PhantomJS binary location, protocol timing and viewport defaults"
}

// Data returns the current configuration data.
func (s *DriverSection) Data() map[string]any {
	return map[string]any{
		"bin_path":           s.binPath,
		"startup_timeout_ms": s.startupTimeoutMS,
		"command_timeout_ms": s.commandTimeoutMS,
		"poll_interval_ms":   s.pollIntervalMS,
		"settle_delay_ms":    s.settleDelayMS,
		"viewport_width":     s.viewportWidth,
		"viewport_height":    s.viewportHeight,
	}
}

// SetData updates the configuration from stored data. Missing keys keep
// their current values.
func (s *DriverSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	if v, ok := stringValue(data, "bin_path"); ok {
		s.binPath = v
	}
	if v, ok := intValue(data, "startup_timeout_ms"); ok {
		s.startupTimeoutMS = v
	}
	if v, ok := intValue(data, "command_timeout_ms"); ok {
		s.commandTimeoutMS = v
	}
	if v, ok := intValue(data, "poll_interval_ms"); ok {
		s.pollIntervalMS = v
	}
	if v, ok := intValue(data, "settle_delay_ms"); ok {
		s.settleDelayMS = v
	}
	if v, ok := intValue(data, "viewport_width"); ok {
		s.viewportWidth = v
	}
	if v, ok := intValue(data, "viewport_height"); ok {
		s.viewportHeight = v
	}
	return nil
}

// Validate validates the current configuration.
func (s *DriverSection) Validate() error {
	for name, v := range map[string]int{
		"startup_timeout_ms": s.startupTimeoutMS,
		"command_timeout_ms": s.commandTimeoutMS,
		"poll_interval_ms":   s.pollIntervalMS,
		"settle_delay_ms":    s.settleDelayMS,
		"viewport_width":     s.viewportWidth,
		"viewport_height":    s.viewportHeight,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

// Reset restores the section to defaults.
func (s *DriverSection) Reset() {
	*s = DriverSection{}
}

// BinPath returns the configured engine binary path, if any.
func (s *DriverSection) BinPath() string { return s.binPath }

// Options converts the section into driver options, starting from the
// driver's own defaults and applying only explicitly configured values.
func (s *DriverSection) Options() driver.Options {
	opts := driver.DefaultOptions()
	opts.BinPath = s.binPath

	if s.startupTimeoutMS > 0 {
		opts.StartupTimeout = time.Duration(s.startupTimeoutMS) * time.Millisecond
	}
	if s.commandTimeoutMS > 0 {
		opts.CommandTimeout = time.Duration(s.commandTimeoutMS) * time.Millisecond
	}
	if s.pollIntervalMS > 0 {
		opts.PollInterval = time.Duration(s.pollIntervalMS) * time.Millisecond
	}
	if s.settleDelayMS > 0 {
		opts.SettleDelay = time.Duration(s.settleDelayMS) * time.Millisecond
	}
	if s.viewportWidth > 0 {
		opts.ViewportWidth = s.viewportWidth
	}
	if s.viewportHeight > 0 {
		opts.ViewportHeight = s.viewportHeight
	}
	return opts
}
