package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.normalizeNaming()
	c.normalizeLookup()
	c.normalizeSync()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ImportDir) == "" {
		c.Paths.ImportDir = defaultImportDir
	}
	if c.Paths.ImportDir, err = expandPath(c.Paths.ImportDir); err != nil {
		return fmt.Errorf("paths.import_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDB) == "" {
		c.Paths.StateDB = defaultStateDB
	}
	if c.Paths.StateDB, err = expandPath(c.Paths.StateDB); err != nil {
		return fmt.Errorf("paths.state_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.LookupCacheDB) == "" {
		c.Paths.LookupCacheDB = defaultLookupCacheDB
	}
	if c.Paths.LookupCacheDB, err = expandPath(c.Paths.LookupCacheDB); err != nil {
		return fmt.Errorf("paths.lookup_cache_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() {
	format := strings.ToLower(strings.TrimSpace(c.Output.Format))
	format = strings.TrimPrefix(format, ".")
	if format == "" {
		format = defaultOutputFormat
	}
	c.Output.Format = format
}

func (c *Config) normalizeNaming() {
	if len(c.Naming.Templates) == 0 {
		c.Naming.Templates = Default().Naming.Templates
		return
	}
	normalized := make(map[string]string, len(c.Naming.Templates))
	for key, template := range c.Naming.Templates {
		normalized[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(template)
	}
	if strings.TrimSpace(normalized["default"]) == "" {
		normalized["default"] = defaultTemplate
	}
	c.Naming.Templates = normalized
}

func (c *Config) normalizeLookup() {
	services := make([]string, 0, len(c.Lookup.Services))
	seen := make(map[string]struct{}, len(c.Lookup.Services))
	for _, service := range c.Lookup.Services {
		name := strings.ToLower(strings.TrimSpace(service))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		services = append(services, name)
	}
	c.Lookup.Services = services

	if c.Lookup.CacheTTLDays <= 0 {
		c.Lookup.CacheTTLDays = defaultCacheTTLDays
	}

	c.Lookup.Metron.Username = strings.TrimSpace(c.Lookup.Metron.Username)
	if c.Lookup.Metron.Username == "" {
		if value, ok := os.LookupEnv("METRON_USERNAME"); ok {
			c.Lookup.Metron.Username = strings.TrimSpace(value)
		}
	}
	c.Lookup.Metron.Password = strings.TrimSpace(c.Lookup.Metron.Password)
	if c.Lookup.Metron.Password == "" {
		if value, ok := os.LookupEnv("METRON_PASSWORD"); ok {
			c.Lookup.Metron.Password = strings.TrimSpace(value)
		}
	}
	c.Lookup.Metron.BaseURL = strings.TrimSpace(c.Lookup.Metron.BaseURL)
	if c.Lookup.Metron.TimeoutSeconds <= 0 {
		c.Lookup.Metron.TimeoutSeconds = defaultMetronTimeout
	}
	if c.Lookup.Metron.Retries <= 0 {
		c.Lookup.Metron.Retries = defaultMetronRetries
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.Workers <= 0 {
		c.Sync.Workers = defaultWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
