package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logOut io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput redirects the JSON log stream. Run defaults to stdout and
// RunMCP to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

func (a *application) logWriter(def io.Writer) io.Writer {
	if a.logOut != nil {
		return a.logOut
	}
	return def
}
