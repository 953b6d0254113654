package internal

// Option configures Run before the server starts.
type Option func(*application)

// application collects what Run assembles: currently just the parsed
// config.
type application struct {
	config *Config
}

// WithConfig supplies the loaded Retrace configuration. Run refuses to
// start without one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
