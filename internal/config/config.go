// Package config builds the explicit configuration value consumed by the
// toolchain package. The environment is read once, here, and never again.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variable names.
const (
	EnvCC      = "CC"
	EnvHost    = "HOST"
	EnvTarget  = "TARGET"
	EnvCFlags  = "CFLAGS"
	EnvLDFlags = "LDFLAGS"
)

// FileName is the configuration file searched for by Find.
const FileName = "cdetect.toml"

// DefaultBackoff is the pause between attempts to acquire a busy scratch file.
const DefaultBackoff = time.Millisecond

// Config is a snapshot of everything the probe reads from its surroundings.
type Config struct {
	CC      string // explicit compiler override
	Host    string // host triple
	Target  string // target triple
	CFlags  string // whitespace separated
	LDFlags string // whitespace separated

	// CCSet records that CC was given, even when blank. A blank override
	// still disables the candidate search.
	CCSet bool

	RetryAttempts int // 0 means unbounded
	RetryBackoff  time.Duration
}

// Default returns a Config with no overrides.
func Default() Config {
	return Config{RetryBackoff: DefaultBackoff}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv returns Default overlaid with the process environment.
func FromEnv() Config {
	cfg := Default()
	cfg.ApplyEnv(os.LookupEnv)
	return cfg
}

// ApplyEnv overwrites fields for every variable lookup reports as set.
// Empty values count as unset, except for CC: a present CC is an override
// whatever its value.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if lookup == nil {
		return
	}
	if v, ok := lookup(EnvCC); ok {
		c.CC = v
		c.CCSet = true
	}
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&c.Host, EnvHost)
	set(&c.Target, EnvTarget)
	set(&c.CFlags, EnvCFlags)
	set(&c.LDFlags, EnvLDFlags)
}

// HasCC reports whether discovery must use CC instead of searching.
func (c Config) HasCC() bool { return c.CCSet || c.CC != "" }

// IsCross reports whether both host and target are known and differ.
func (c Config) IsCross() bool {
	return c.Target != "" && c.Host != "" && c.Target != c.Host
}

// CompileFlags splits CFlags on whitespace.
func (c Config) CompileFlags() []string { return strings.Fields(c.CFlags) }

// LinkFlags splits LDFlags on whitespace.
func (c Config) LinkFlags() []string { return strings.Fields(c.LDFlags) }

type fileConfig struct {
	Compiler compilerSection `toml:"compiler"`
	Probe    probeSection    `toml:"probe"`
}

type compilerSection struct {
	CC      string `toml:"cc"`
	Host    string `toml:"host"`
	Target  string `toml:"target"`
	CFlags  string `toml:"cflags"`
	LDFlags string `toml:"ldflags"`
}

type probeSection struct {
	RetryAttempts int    `toml:"retry_attempts"`
	RetryBackoff  string `toml:"retry_backoff"`
}

// LoadFile reads a cdetect.toml on top of Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	cfg.CC = strings.TrimSpace(fc.Compiler.CC)
	cfg.CCSet = meta.IsDefined("compiler", "cc")
	cfg.Host = strings.TrimSpace(fc.Compiler.Host)
	cfg.Target = strings.TrimSpace(fc.Compiler.Target)
	cfg.CFlags = fc.Compiler.CFlags
	cfg.LDFlags = fc.Compiler.LDFlags

	if meta.IsDefined("probe", "retry_attempts") {
		if fc.Probe.RetryAttempts < 0 {
			return Config{}, fmt.Errorf("%s: [probe].retry_attempts must not be negative", path)
		}
		cfg.RetryAttempts = fc.Probe.RetryAttempts
	}
	if meta.IsDefined("probe", "retry_backoff") {
		d, err := time.ParseDuration(strings.TrimSpace(fc.Probe.RetryBackoff))
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid [probe].retry_backoff: %w", path, err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("%s: [probe].retry_backoff must not be negative", path)
		}
		cfg.RetryBackoff = d
	}
	return cfg, nil
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load resolves the effective configuration: the file at path (or the one
// found from the working directory when path is empty), then the environment.
func Load(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path == "" {
		found, ok, err := Find(".")
		if err != nil {
			return Config{}, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}
	cfg.ApplyEnv(lookup)
	return cfg, nil
}
