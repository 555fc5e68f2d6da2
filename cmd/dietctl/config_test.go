package main

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// resetFlags restores global flag state after each test.
func resetFlags(t *testing.T) {
	t.Helper()
	orig := struct{ url, fmt string }{flagURL, flagFmt}
	t.Cleanup(func() {
		flagURL = orig.url
		flagFmt = orig.fmt
	})
}

// isolate points HOME at a temp dir and clears DIETINSIGHTS_URL.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DIETINSIGHTS_URL", "")
	return home
}

func writeTestConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".dietinsights")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveConfigEnvURL(t *testing.T) {
	isolate(t)
	t.Setenv("DIETINSIGHTS_URL", "http://env-server:9090")

	flagURL = defaultURL
	resolveConfig()

	if flagURL != "http://env-server:9090" {
		t.Errorf("flagURL: got %q, want %q", flagURL, "http://env-server:9090")
	}
}

func TestResolveConfigFlagTakesPrecedence(t *testing.T) {
	home := isolate(t)
	t.Setenv("DIETINSIGHTS_URL", "http://env-server:9090")
	writeTestConfig(t, home, "url: http://from-file:8080\n")

	flagURL = "http://explicit-flag:1234"
	resolveConfig()

	if flagURL != "http://explicit-flag:1234" {
		t.Errorf("explicit flag should win; got %q", flagURL)
	}
}

func TestResolveConfigFlatYAML(t *testing.T) {
	home := isolate(t)
	writeTestConfig(t, home, "url: http://from-file:8080\n")

	flagURL = defaultURL
	resolveConfig()

	if flagURL != "http://from-file:8080" {
		t.Errorf("flagURL: got %q, want %q", flagURL, "http://from-file:8080")
	}
}

func TestResolveConfigProfiles(t *testing.T) {
	home := isolate(t)
	writeTestConfig(t, home, `url: http://flat:1
active_profile: staging
profiles:
  default:
    url: http://default-profile:2
  staging:
    url: http://staging:3
`)

	flagURL = defaultURL
	resolveConfig()

	if flagURL != "http://staging:3" {
		t.Errorf("flagURL: got %q, want active profile URL", flagURL)
	}
}

func TestResolveConfigMissingProfileFallsBackToFlat(t *testing.T) {
	home := isolate(t)
	writeTestConfig(t, home, "url: http://flat:1\nactive_profile: prod\nprofiles:\n  default:\n    url: http://default:2\n")

	flagURL = defaultURL
	resolveConfig()

	if flagURL != "http://flat:1" {
		t.Errorf("flagURL: got %q, want flat URL", flagURL)
	}
}

func TestResolveConfigInvalidYAMLIgnored(t *testing.T) {
	home := isolate(t)
	writeTestConfig(t, home, "url: [unterminated\n")

	flagURL = defaultURL
	resolveConfig()

	if flagURL != defaultURL {
		t.Errorf("flagURL: got %q, want default", flagURL)
	}
}

func TestWriteConfigPreservesOtherProfiles(t *testing.T) {
	home := isolate(t)
	writeTestConfig(t, home, "active_profile: default\nprofiles:\n  default:\n    url: http://old:1\n")

	path, err := writeConfig("http://new:2", "staging")
	if err != nil {
		t.Fatalf("writeConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.ActiveProfile != "staging" {
		t.Errorf("active profile: got %q", cfg.ActiveProfile)
	}
	if cfg.Profiles["default"].URL != "http://old:1" || cfg.Profiles["staging"].URL != "http://new:2" {
		t.Errorf("profiles: got %+v", cfg.Profiles)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode: got %v, want 0600", info.Mode().Perm())
	}
}
