package scanout

import (
	"os"
	"strconv"
	"sync"
)

// Environment variables consulted by ConfigFromEnv.
const (
	// EnvNoDirectScanout disables the direct scanout path when set to "1".
	// It is a diagnostic switch for drivers that misreport scanout support.
	EnvNoDirectScanout = "SCANOUT_NO_DIRECT_SCANOUT"

	// EnvDumpDir makes offscreen layers write every finished frame as PNG
	// into the named directory.
	EnvDumpDir = "SCANOUT_DUMP_DIR"
)

// Swap-chain depth limits.
const (
	// DefaultBufferDepth is triple buffering.
	DefaultBufferDepth = 3

	// MinBufferDepth is the smallest ring that can render while the display
	// holds the front buffer.
	MinBufferDepth = 2

	// MaxBufferDepth bounds the ring and therefore the damage history.
	MaxBufferDepth = 4
)

// Config holds the settings threaded into layers and surfaces at
// construction. The zero value is not useful; start from DefaultConfig,
// NewConfig or ConfigFromEnv.
type Config struct {
	// DisableDirectScanout forces every frame through composition.
	DisableDirectScanout bool

	// BufferDepth is the number of buffers in each render surface ring.
	BufferDepth int

	// DumpDir, when non-empty, receives PNG dumps of offscreen frames.
	DumpDir string
}

// DefaultConfig returns the built-in configuration: direct scanout enabled,
// triple buffering, no frame dumps.
func DefaultConfig() Config {
	return Config{BufferDepth: DefaultBufferDepth}
}

// NewConfig returns DefaultConfig with opts applied.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()
	return cfg
}

// envConfig parses the environment once per process.
var envConfig = sync.OnceValue(func() Config {
	cfg := DefaultConfig()
	if v, err := strconv.Atoi(os.Getenv(EnvNoDirectScanout)); err == nil && v == 1 {
		cfg.DisableDirectScanout = true
		Logger().Info("scanout: direct scanout disabled by environment", "var", EnvNoDirectScanout)
	}
	cfg.DumpDir = os.Getenv(EnvDumpDir)
	return cfg
})

// ConfigFromEnv returns the configuration derived from the environment,
// with opts applied on top. The environment is read on the first call only;
// later changes to the process environment are not observed.
func ConfigFromEnv(opts ...Option) Config {
	cfg := envConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()
	return cfg
}

// normalize clamps BufferDepth into [MinBufferDepth, MaxBufferDepth].
func (c *Config) normalize() {
	switch {
	case c.BufferDepth == 0:
		c.BufferDepth = DefaultBufferDepth
	case c.BufferDepth < MinBufferDepth:
		c.BufferDepth = MinBufferDepth
	case c.BufferDepth > MaxBufferDepth:
		c.BufferDepth = MaxBufferDepth
	}
}
