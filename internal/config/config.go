// Package config provides configuration management for the Heimdex Turnover
// agent. Defaults are overridden by an optional TOML file, then by
// environment variables (a local .env file is loaded first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	// Default values
	DefaultPort      = 8788
	DefaultLogLevel  = "info"
	DefaultDataDir   = ".heimdex-turnover"
	DefaultFPS       = 24.0
	DefaultProjectID = "default"

	// Environment variable names
	EnvPort       = "HEIMDEX_TURNOVER_PORT"
	EnvLogLevel   = "HEIMDEX_TURNOVER_LOG_LEVEL"
	EnvDataDir    = "HEIMDEX_TURNOVER_DATA_DIR"
	EnvDefaultFPS = "HEIMDEX_TURNOVER_DEFAULT_FPS"
	EnvProjectID  = "HEIMDEX_TURNOVER_DEFAULT_PROJECT"
	EnvConfigFile = "HEIMDEX_TURNOVER_CONFIG"
	EnvHeadless   = "HEIMDEX_TURNOVER_HEADLESS"

	// Database filename
	DBFilename = "turnover.db"

	// ConfigFilename is looked up inside the data directory when
	// HEIMDEX_TURNOVER_CONFIG is unset.
	ConfigFilename = "config.toml"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	DefaultFPS() float64
	DefaultProjectID() string
	ScanExtensions() []string
	Headless() bool
}

// fileConfig mirrors config.toml. Zero values leave the defaults alone.
type fileConfig struct {
	Port           int      `toml:"port"`
	LogLevel       string   `toml:"log_level"`
	DataDir        string   `toml:"data_dir"`
	DefaultFPS     float64  `toml:"default_fps"`
	DefaultProject string   `toml:"default_project"`
	ScanExtensions []string `toml:"scan_extensions"`
	Headless       *bool    `toml:"headless"`
}

// EnvConfig holds the resolved configuration.
type EnvConfig struct {
	port           int
	logLevel       string
	dataDir        string
	defaultFPS     float64
	projectID      string
	scanExtensions []string
	headless       bool
	configFile     string
}

// New creates a new EnvConfig with defaults, config file values and
// environment variable overrides applied in that order.
func New() (*EnvConfig, error) {
	// A missing .env file is normal.
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:       DefaultPort,
		logLevel:   DefaultLogLevel,
		dataDir:    defaultDataDir(),
		defaultFPS: DefaultFPS,
		projectID:  DefaultProjectID,
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = expandHome(dd)
	}

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = filepath.Join(cfg.dataDir, ConfigFilename)
	}
	if err := cfg.loadFile(expandHome(path)); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EnvConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.configFile = path

	if fc.Port != 0 {
		if err := validPort(fc.Port); err != nil {
			return fmt.Errorf("invalid port in %s: %w", path, err)
		}
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	// The env var names the directory the file was found in, so it wins.
	if fc.DataDir != "" && os.Getenv(EnvDataDir) == "" {
		c.dataDir = expandHome(fc.DataDir)
	}
	if fc.DefaultFPS != 0 {
		if fc.DefaultFPS < 0 {
			return fmt.Errorf("invalid default_fps in %s: must be positive", path)
		}
		c.defaultFPS = fc.DefaultFPS
	}
	if fc.DefaultProject != "" {
		c.projectID = fc.DefaultProject
	}
	if len(fc.ScanExtensions) > 0 {
		c.scanExtensions = fc.ScanExtensions
	}
	if fc.Headless != nil {
		c.headless = *fc.Headless
	}
	return nil
}

func (c *EnvConfig) applyEnv() error {
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if err := validPort(port); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}

	if f := os.Getenv(EnvDefaultFPS); f != "" {
		fps, err := strconv.ParseFloat(f, 64)
		if err != nil || fps <= 0 {
			return fmt.Errorf("invalid %s: %q is not a positive frame rate", EnvDefaultFPS, f)
		}
		c.defaultFPS = fps
	}

	if p := strings.TrimSpace(os.Getenv(EnvProjectID)); p != "" {
		c.projectID = p
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		c.headless = headless
	}
	return nil
}

func validPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// DefaultFPS is the frame rate assumed for EDL and marker files.
func (c *EnvConfig) DefaultFPS() float64 {
	return c.defaultFPS
}

func (c *EnvConfig) DefaultProjectID() string {
	return c.projectID
}

// ScanExtensions returns the configured drop-folder extensions, or nil for
// the built-in set.
func (c *EnvConfig) ScanExtensions() []string {
	return c.scanExtensions
}

func (c *EnvConfig) Headless() bool {
	return c.headless
}

// ConfigFile returns the TOML file that was loaded, or "" when none was.
func (c *EnvConfig) ConfigFile() string {
	return c.configFile
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
