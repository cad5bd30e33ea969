package config

import "time"

// Config holds the application configuration for the task runner core.
type Config struct {
	Paths *Paths

	// WatchDebounce coalesces the storm of directory+file events a single
	// edit produces (§5 "Watcher storm").
	WatchDebounce time.Duration

	// DefaultShellExecutable is used for type=shell tasks that don't
	// declare options.shell.executable.
	DefaultShellExecutable string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}

	return &Config{
		Paths:                  paths,
		WatchDebounce:          500 * time.Millisecond,
		DefaultShellExecutable: defaultShellExecutable(),
	}, nil
}
