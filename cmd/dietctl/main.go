package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/dietinsights/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3030"

var (
	apiClient *client.Client
	flagURL   string
	flagFmt   string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("dietctl version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("dietctl version %s-dev", version)
}

type configFile struct {
	// Flat format
	URL string `yaml:"url"`
	// Profile format
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL string `yaml:"url"`
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dietctl",
		Short:   "dietctl: query and feed a dietinsights server",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = client.New(flagURL, client.WithUserAgent("dietctl/"+version))
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "Server URL (env: DIETINSIGHTS_URL)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table")

	initCmd := newInitCmd()
	initCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup
	doctorCmd := newDoctorCmd()
	doctorCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) { resolveConfig() }

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newComputeCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newIngestCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dietinsights", "config.yaml"), nil
}

// loadConfig reads the config file. A missing file is returned as an error
// alongside the path that was tried.
func loadConfig() (string, *configFile, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfgPath, nil, err
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfgPath, nil, err
	}
	return cfgPath, &cfg, nil
}

// profileURL resolves the URL from profiles if available, falling back to
// the flat format.
func (c *configFile) profileURL() string {
	resolved := c.URL
	if c.Profiles != nil {
		name := c.ActiveProfile
		if name == "" {
			name = "default"
		}
		if p, ok := c.Profiles[name]; ok && p.URL != "" {
			resolved = p.URL
		}
	}
	return resolved
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL != defaultURL {
		return
	}
	if v := os.Getenv("DIETINSIGHTS_URL"); v != "" {
		flagURL = v
		return
	}

	_, cfg, err := loadConfig()
	if err != nil {
		return
	}
	if u := cfg.profileURL(); u != "" {
		flagURL = u
	}
}
