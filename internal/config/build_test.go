package config

import "testing"

func TestNewBuildInfoDefaults(t *testing.T) {
	info := NewBuildInfo()

	want := BuildInfo{Version: "dev", Commit: "none", BuildTime: "unknown"}
	if info != want {
		t.Errorf("NewBuildInfo() = %+v, want %+v", info, want)
	}
}

// Linker variables are overridden in release builds; LoadConfig must pick
// them up rather than caching the defaults.
func TestLoadConfigUsesLinkerVariables(t *testing.T) {
	setMinimalTestEnv(t)

	orig := version
	t.Cleanup(func() { version = orig })
	version = "1.4.0"

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Build.Version != "1.4.0" {
		t.Errorf("Build.Version = %q, want 1.4.0", cfg.Build.Version)
	}
}
