// Package config handles the quill configuration directory and settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the dotfile directory under the user's home.
	DirName = ".quill"

	// SettingsFile is the settings filename inside the config directory.
	SettingsFile = "config.yaml"

	// EnvFile is an optional env file inside the config directory, loaded
	// before environment overrides are applied. Useful for keeping the
	// MongoDB connection string out of the settings file.
	EnvFile = ".env"
)

// StorageType selects which backend to construct.
type StorageType string

const (
	StorageLocal   StorageType = "local"
	StorageMongoDB StorageType = "mongodb"
)

// LocalSettings configures the file-backed store.
type LocalSettings struct {
	Path string `yaml:"path"`
}

// MongoSettings configures the MongoDB-backed store.
type MongoSettings struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// Settings is the persisted configuration.
type Settings struct {
	Storage StorageType   `yaml:"storage"`
	Local   LocalSettings `yaml:"local"`
	Mongo   MongoSettings `yaml:"mongodb"`
}

// DefaultSettings returns the configuration used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Storage: StorageLocal,
		Local: LocalSettings{
			Path: "~/" + DirName + "/storage/todos.json",
		},
		Mongo: MongoSettings{
			URI:        "mongodb://localhost:27017",
			Database:   "quill",
			Collection: "tasks",
		},
	}
}

// Config holds the resolved configuration directory, loaded settings, and
// per-invocation options.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Settings are the loaded (or default) persisted settings.
	Settings Settings

	// ContextKey is the task-list partition key for this invocation,
	// either supplied explicitly or derived from the enclosing git repo.
	ContextKey string

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config rooted at configDir, falling back to ~/.quill.
// A missing settings file is not an error; defaults are used. A present but
// malformed file is an error.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultDir()
	}

	cfg := &Config{Dir: dir, Settings: DefaultSettings()}

	// Optional env file; absence is fine.
	godotenv.Load(filepath.Join(dir, EnvFile))

	path := cfg.SettingsPath()
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, &cfg.Settings); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(&cfg.Settings)

	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultDir returns the default configuration directory, $HOME/.quill.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return DirName
	}
	return filepath.Join(home, DirName)
}

// applyEnv overlays QUILL_* environment variables on the settings.
func applyEnv(s *Settings) {
	if v := os.Getenv("QUILL_STORAGE"); v != "" {
		s.Storage = StorageType(v)
	}
	if v := os.Getenv("QUILL_LOCAL_PATH"); v != "" {
		s.Local.Path = v
	}
	if v := os.Getenv("QUILL_MONGO_URI"); v != "" {
		s.Mongo.URI = v
	}
	if v := os.Getenv("QUILL_MONGO_DATABASE"); v != "" {
		s.Mongo.Database = v
	}
	if v := os.Getenv("QUILL_MONGO_COLLECTION"); v != "" {
		s.Mongo.Collection = v
	}
}

// Validate checks that the settings select a known backend.
func (s Settings) Validate() error {
	switch s.Storage {
	case StorageLocal, StorageMongoDB:
		return nil
	default:
		return fmt.Errorf("unknown storage type: %q (want %q or %q)",
			s.Storage, StorageLocal, StorageMongoDB)
	}
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Save writes the current settings to the settings file.
func (c *Config) Save() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(c.Settings)
	if err != nil {
		return err
	}
	return os.WriteFile(c.SettingsPath(), raw, 0644)
}
