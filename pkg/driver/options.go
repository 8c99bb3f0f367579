package driver

import (
	"time"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"

	"github.com/entrhq/phasma/pkg/logging"
)

// Default timing and viewport values. Timeouts follow the engine protocol:
// a slow startup handshake, short bounded shutdown, and a generous default
// per-command budget.
const (
	DefaultStartupTimeout = 10 * time.Second
	DefaultCommandTimeout = 60 * time.Second
	DefaultCloseTimeout   = 5 * time.Second
	DefaultKillTimeout    = 5 * time.Second
	DefaultPollInterval   = 50 * time.Millisecond
	DefaultSettleDelay    = 100 * time.Millisecond

	DefaultViewportWidth  = 1024
	DefaultViewportHeight = 768
)

// Options configures a Driver. The zero value is not usable; start from
// DefaultOptions and override what you need.
type Options struct {
	// BinPath is the PhantomJS executable to spawn. Required.
	BinPath string `envconfig:"PHASMA_PHANTOMJS"`

	// ExtraArgs are appended to the fixed engine flags.
	ExtraArgs []string `ignored:"true"`

	StartupTimeout time.Duration `envconfig:"PHASMA_STARTUP_TIMEOUT"`
	CommandTimeout time.Duration `envconfig:"PHASMA_COMMAND_TIMEOUT"`
	CloseTimeout   time.Duration `envconfig:"PHASMA_CLOSE_TIMEOUT"`
	KillTimeout    time.Duration `envconfig:"PHASMA_KILL_TIMEOUT"`
	PollInterval   time.Duration `envconfig:"PHASMA_POLL_INTERVAL"`
	SettleDelay    time.Duration `envconfig:"PHASMA_SETTLE_DELAY"`

	ViewportWidth  int `envconfig:"PHASMA_VIEWPORT_WIDTH"`
	ViewportHeight int `envconfig:"PHASMA_VIEWPORT_HEIGHT"`

	// Fs is the filesystem the channel files live on. Defaults to the OS
	// filesystem; tests substitute an in-memory one.
	Fs afero.Fs `ignored:"true"`

	// Logger receives lifecycle and protocol diagnostics. Defaults to a
	// no-op logger.
	Logger *logging.Logger `ignored:"true"`
}

// DefaultOptions returns Options populated with the protocol defaults.
func DefaultOptions() Options {
	return Options{
		StartupTimeout: DefaultStartupTimeout,
		CommandTimeout: DefaultCommandTimeout,
		CloseTimeout:   DefaultCloseTimeout,
		KillTimeout:    DefaultKillTimeout,
		PollInterval:   DefaultPollInterval,
		SettleDelay:    DefaultSettleDelay,
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
	}
}

// OptionsFromEnv returns DefaultOptions overridden by any PHASMA_*
// environment variables.
func OptionsFromEnv() (Options, error) {
	opts := DefaultOptions()
	if err := envconfig.Process("", &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// withDefaults fills zero-valued fields so the driver never divides by a
// zero interval or waits forever on a zero timeout.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.StartupTimeout <= 0 {
		o.StartupTimeout = def.StartupTimeout
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = def.CommandTimeout
	}
	if o.CloseTimeout <= 0 {
		o.CloseTimeout = def.CloseTimeout
	}
	if o.KillTimeout <= 0 {
		o.KillTimeout = def.KillTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = def.SettleDelay
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = def.ViewportWidth
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = def.ViewportHeight
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	return o
}
