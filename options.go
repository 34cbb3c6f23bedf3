package scanout

// Option configures a Config during creation.
//
// Example:
//
//	cfg := scanout.NewConfig(
//	    scanout.WithBufferDepth(2),
//	    scanout.WithDirectScanoutDisabled(true),
//	)
type Option func(*Config)

// WithBufferDepth sets the swap-chain depth. Values outside
// [MinBufferDepth, MaxBufferDepth] are clamped.
func WithBufferDepth(n int) Option {
	return func(c *Config) {
		c.BufferDepth = n
	}
}

// WithDirectScanoutDisabled turns the direct scanout path off (or back on).
func WithDirectScanoutDisabled(disabled bool) Option {
	return func(c *Config) {
		c.DisableDirectScanout = disabled
	}
}

// WithDumpDir sets the directory offscreen layers dump frames into.
// An empty string disables dumping.
func WithDumpDir(dir string) Option {
	return func(c *Config) {
		c.DumpDir = dir
	}
}
