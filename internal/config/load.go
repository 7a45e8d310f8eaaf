package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded is the result of resolving and parsing the runtime configuration.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves the config path, reads the file if present, and parses it on
// top of the built-in defaults. A missing file is not an error; it yields the
// defaults plus a warning so doctor and logs can point at the expected path.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, err := os.ReadFile(resolvedPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return defaultsForMissingFile(resolvedPath), nil
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, warnings, err := Parse(string(content), Default())
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

func defaultsForMissingFile(path string) Loaded {
	return Loaded{
		Path:   path,
		Config: Default(),
		Warnings: []Warning{{
			Message: fmt.Sprintf("config file %q not found; using defaults", path),
		}},
		Exists: false,
	}
}
