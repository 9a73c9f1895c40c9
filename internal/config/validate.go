package config

import (
	"errors"
	"fmt"

	"longbox/internal/comicarchive"
	"longbox/internal/naming"
)

// Validate ensures the configuration is usable before any archive is
// touched.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateLookup(); err != nil {
		return err
	}
	if c.Sync.Workers <= 0 {
		return errors.New("sync.workers must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	kind, ok := comicarchive.ParseKind(c.Output.Format)
	if !ok {
		return fmt.Errorf("output.format: unsupported container kind %q", c.Output.Format)
	}
	if !kind.Writable() {
		return fmt.Errorf("output.format %q is read-only and cannot be an output target", kind)
	}
	return nil
}

func (c *Config) validateNaming() error {
	if _, err := naming.CompileSet(c.Naming.Templates); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLookup() error {
	for _, service := range c.Lookup.Services {
		switch service {
		case "metron":
			if c.Lookup.Metron.Username == "" || c.Lookup.Metron.Password == "" {
				return errors.New("lookup.metron credentials are required when metron is listed in lookup.services (or set METRON_USERNAME / METRON_PASSWORD)")
			}
		default:
			return fmt.Errorf("lookup.services: unknown service %q", service)
		}
	}
	return nil
}

// CompiledTemplates compiles the naming templates. Call after Validate;
// compilation cannot fail on a validated config.
func (c *Config) CompiledTemplates() (*naming.Set, error) {
	return naming.CompileSet(c.Naming.Templates)
}

// OutputKind returns the parsed output container kind.
func (c *Config) OutputKind() comicarchive.Kind {
	kind, ok := comicarchive.ParseKind(c.Output.Format)
	if !ok {
		return comicarchive.KindCBZ
	}
	return kind
}
