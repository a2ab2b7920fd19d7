package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	errUnknownDriver = errors.New("unrecognized storage driver")
	errRoutePath     = errors.New("route path must start with /")
	errGuardPath     = errors.New("guard paths must start with /")
)

func loadFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	filename, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	yamlFile, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}

	return nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "file", "memory", "redis":
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, c.Storage.Driver)
	}

	if !strings.HasPrefix(c.Guard.LoginPath, "/") || !strings.HasPrefix(c.Guard.DefaultPath, "/") {
		return errGuardPath
	}

	for _, r := range c.Routes {
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("%w: %q", errRoutePath, r.Path)
		}
	}

	return nil
}
