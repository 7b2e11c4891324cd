package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsWhenNoFile(t *testing.T) {
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.Settings.Storage != StorageLocal {
		t.Errorf("expected local storage default, got %q", cfg.Settings.Storage)
	}
	if cfg.Settings.Local.Path != "~/.quill/storage/todos.json" {
		t.Errorf("unexpected local path default: %q", cfg.Settings.Local.Path)
	}
	if cfg.Settings.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("unexpected mongo uri default: %q", cfg.Settings.Mongo.URI)
	}
	if cfg.Settings.Mongo.Database != "quill" || cfg.Settings.Mongo.Collection != "tasks" {
		t.Errorf("unexpected mongo defaults: %+v", cfg.Settings.Mongo)
	}
}

func TestLoadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `storage: mongodb
mongodb:
  uri: mongodb://db.example.com:27017
  database: teamtasks
  collection: todos
`
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.Settings.Storage != StorageMongoDB {
		t.Errorf("expected mongodb storage, got %q", cfg.Settings.Storage)
	}
	if cfg.Settings.Mongo.URI != "mongodb://db.example.com:27017" {
		t.Errorf("unexpected uri: %q", cfg.Settings.Mongo.URI)
	}
	if cfg.Settings.Mongo.Database != "teamtasks" {
		t.Errorf("unexpected database: %q", cfg.Settings.Mongo.Database)
	}
	// Untouched sections keep their defaults.
	if cfg.Settings.Local.Path != "~/.quill/storage/todos.json" {
		t.Errorf("local path default lost: %q", cfg.Settings.Local.Path)
	}
}

func TestMalformedSettingsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte("storage: [oops"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(dir); err == nil {
		t.Error("expected error for malformed settings file")
	}
}

func TestUnknownStorageType(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SettingsFile), []byte("storage: redis\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(dir); err == nil {
		t.Error("expected error for unknown storage type")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUILL_STORAGE", "mongodb")
	t.Setenv("QUILL_MONGO_URI", "mongodb://override:27017")

	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if cfg.Settings.Storage != StorageMongoDB {
		t.Errorf("expected env to select mongodb, got %q", cfg.Settings.Storage)
	}
	if cfg.Settings.Mongo.URI != "mongodb://override:27017" {
		t.Errorf("expected env uri override, got %q", cfg.Settings.Mongo.URI)
	}
}

func TestEnvFileLoaded(t *testing.T) {
	// godotenv must not clobber variables already set, so clear first.
	t.Setenv("QUILL_LOCAL_PATH", "")
	os.Unsetenv("QUILL_LOCAL_PATH")
	t.Cleanup(func() { os.Unsetenv("QUILL_LOCAL_PATH") })

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, EnvFile), []byte("QUILL_LOCAL_PATH=/tmp/envfile.json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.Settings.Local.Path != "/tmp/envfile.json" {
		t.Errorf("expected env file override, got %q", cfg.Settings.Local.Path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Dir: dir, Settings: DefaultSettings()}
	cfg.Settings.Storage = StorageMongoDB

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if loaded.Settings != cfg.Settings {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded.Settings, cfg.Settings)
	}
}
