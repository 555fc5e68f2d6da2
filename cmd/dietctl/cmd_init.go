package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/dietinsights/client"
)

func newInitCmd() *cobra.Command {
	var (
		initURL     string
		profileName string
		skipCheck   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up dietctl configuration",
		Long:  "Interactive setup wizard that creates ~/.dietinsights/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			nonInteractive := initURL != ""
			return runInit(initURL, profileName, nonInteractive, skipCheck)
		},
	}

	cmd.Flags().StringVar(&initURL, "server", "", "Server URL (non-interactive mode)")
	cmd.Flags().StringVar(&profileName, "profile", "default", "Profile name to write")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "Do not test the connection before saving")
	return cmd
}

func runInit(url, profile string, nonInteractive, skipCheck bool) error {
	if !nonInteractive {
		fmt.Println("\n  dietinsights setup")
		fmt.Println("  ------------------")
		fmt.Println()

		reader := bufio.NewReader(os.Stdin)

		fmt.Printf("  Server URL [%s]: ", defaultURL)
		line, _ := reader.ReadString('\n')
		url = strings.TrimSpace(line)
	}

	if url == "" {
		url = defaultURL
	}
	if profile == "" {
		profile = "default"
	}

	if !skipCheck {
		if !nonInteractive {
			fmt.Print("\n  Testing connection... ")
		}
		ver, err := testConnection(url)
		if err != nil {
			if !nonInteractive {
				fmt.Println("failed")
			}
			return fmt.Errorf("connection failed: %w", err)
		}
		if !nonInteractive {
			fmt.Printf("connected (v%s)\n", ver)
		}
	}

	cfgPath, err := writeConfig(url, profile)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if nonInteractive {
		fmt.Printf("Config saved to %s\n", cfgPath)
	} else {
		fmt.Printf("\n  Config saved to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("  Next steps:")
		fmt.Println("    dietctl doctor             # Full diagnostic check")
		fmt.Println("    dietctl ingest All_Diets.csv")
		fmt.Println("    dietctl stats --format table")
		fmt.Println()
	}

	return nil
}

func testConnection(url string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := client.New(url, client.WithRetries(0)).Health(ctx)
	if err != nil {
		return "", err
	}
	if health.Version == "" {
		return "unknown", nil
	}
	return health.Version, nil
}

// writeConfig sets url on the named profile and makes it active. Other
// profiles in an existing file are preserved.
func writeConfig(url, profile string) (string, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
		return "", err
	}

	cfg := configFile{}
	if _, existing, err := loadConfig(); err == nil {
		cfg = *existing
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]configProfile{}
	}
	cfg.Profiles[profile] = configProfile{URL: url}
	cfg.ActiveProfile = profile
	cfg.URL = ""

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", err
	}

	return cfgPath, nil
}
