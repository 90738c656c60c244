package util

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var DefaultNamespaces = []string{"Math", "Time"}

var supportedDrivers = map[string]bool{
	"sqlite3":  true,
	"mysql":    true,
	"postgres": true,
}

type Configuration struct {
	Version    string `toml:"-"`
	BuildDate  string `toml:"-"`
	Commit     string `toml:"-"`
	JasperHome string `toml:"-"`
	DebugAST   string `toml:"-"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	// Namespaces lists the host namespaces dotted symbols may reach.
	Namespaces   []string `toml:"namespaces"`
	FetchTimeout Duration `toml:"fetch_timeout"`
	// Timeout bounds a whole program evaluation; zero means no bound.
	Timeout Duration `toml:"timeout"`

	Databases  map[string]DatabaseConfig `toml:"databases"`
	Statements map[string]string         `toml:"statements"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Duration decodes TOML strings such as "10s" or "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel:     "error",
		Namespaces:   append([]string(nil), DefaultNamespaces...),
		FetchTimeout: Duration{30 * time.Second},
		Databases:    map[string]DatabaseConfig{},
		Statements:   map[string]string{},
	}
}

// LoadConfiguration overlays the TOML file at path onto base. Unknown keys
// are rejected so that typos do not go unnoticed.
func LoadConfiguration(path string, base Configuration) (Configuration, error) {
	cfg := base
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return base, fmt.Errorf("failed to read config '%s': %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, fmt.Errorf("unknown keys in config '%s': %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	return cfg, nil
}

func (c Configuration) Validate() error {
	names := make([]string, 0, len(c.Databases))
	for name := range c.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		db := c.Databases[name]
		if !supportedDrivers[db.Driver] {
			return fmt.Errorf("database %q: unsupported driver %q", name, db.Driver)
		}
		if db.DSN == "" {
			return fmt.Errorf("database %q: dsn is required", name)
		}
	}
	if c.FetchTimeout.Duration < 0 || c.Timeout.Duration < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// HasNamespace reports whether scope is on the namespace allowlist.
func (c Configuration) HasNamespace(scope string) bool {
	for _, ns := range c.Namespaces {
		if ns == scope {
			return true
		}
	}
	return false
}
