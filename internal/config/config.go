package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Remote contains the control service connection settings.
type Remote struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Paths contains local state directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Sync contains the live-view refresh policy.
type Sync struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for curator.
type Config struct {
	Remote  Remote  `toml:"remote"`
	Paths   Paths   `toml:"paths"`
	Sync    Sync    `toml:"sync"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/curator/config.toml")
}

// Load locates, parses, and validates a configuration file. Environment
// overrides (including any .env in the working directory) are applied
// after parsing. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	// Missing .env files are fine; only the variables matter.
	_ = godotenv.Load()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("CURATOR_CONFIG"))
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if url := strings.TrimSpace(os.Getenv("CURATOR_API_URL")); url != "" {
		cfg.Remote.BaseURL = url
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("curator.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	c.Remote.BaseURL = strings.TrimSpace(c.Remote.BaseURL)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	stateDir, err := expandPath(c.Paths.StateDir)
	if err != nil {
		return err
	}
	c.Paths.StateDir = stateDir
	return nil
}

// EnsureDirectories creates the local state directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o700); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// TokenPath returns the session credential file location.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Paths.StateDir, "token")
}

// SnapshotDBPath returns the local snapshot cache database location.
func (c *Config) SnapshotDBPath() string {
	return filepath.Join(c.Paths.StateDir, "snapshot.db")
}

// RequestTimeout returns the per-request timeout for control service
// calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// PollInterval returns the live-view refresh interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Sync.PollIntervalSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other
// packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified
// location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
