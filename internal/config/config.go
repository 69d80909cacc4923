package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvConfig    = "VLT_CONFIG"
	EnvRoot      = "VLT_ROOT"
	EnvBackend   = "VLT_BACKEND"
	EnvClipboard = "VLT_CLIPBOARD"
	EnvAudit     = "VLT_AUDIT"
)

const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

type Config struct {
	Root      string `toml:"root"`       // Directory holding vault artifacts
	Backend   string `toml:"backend"`    // "file" or "bolt"
	BoltFile  string `toml:"bolt_file"`  // Database name inside Root
	Clipboard bool   `toml:"clipboard"`  // Copy values read by `key`
	Audit     bool   `toml:"audit"`      // Append mutating commands to AuditFile
	AuditFile string `toml:"audit_file"` // Relative paths resolve against Root
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Root:      ".",
		Backend:   BackendFile,
		BoltFile:  "vaults.db",
		Clipboard: true,
		Audit:     false,
		AuditFile: ".vlt-audit.jsonl",
	}
}

// Path returns the config file location: $VLT_CONFIG, or vlt/config.toml
// under the user config directory.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "vlt", "config.toml"), nil
}

// LoadDotEnv populates the environment from a dotenv file. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the config file at path over the defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvRoot); v != "" {
		c.Root = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = v
	}
	for env, dst := range map[string]*bool{EnvClipboard: &c.Clipboard, EnvAudit: &c.Audit} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		*dst = b
	}
	return nil
}

// Validate checks field values
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendBolt:
	default:
		return fmt.Errorf("unsupported backend %q (want %s or %s)", c.Backend, BackendFile, BackendBolt)
	}
	if c.Root == "" {
		return errors.New("root must not be empty")
	}
	if c.Backend == BackendBolt && c.BoltFile == "" {
		return errors.New("bolt_file must be set for the bolt backend")
	}
	return nil
}

// AuditPath resolves AuditFile against Root
func (c Config) AuditPath() string {
	if filepath.IsAbs(c.AuditFile) {
		return c.AuditFile
	}
	return filepath.Join(c.Root, c.AuditFile)
}

// Save writes cfg as TOML, creating parent directories
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}
