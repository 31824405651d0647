package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/degrees/client"
)

func newInitCmd() *cobra.Command {
	var (
		initURL    string
		initAPIKey string
		noVerify   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up degrees CLI configuration",
		Long:  "Creates or updates a profile in ~/.degrees/config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := profile{
				URL:            initURL,
				APIKey:         initAPIKey,
				Provider:       flagProvider,
				ProviderURL:    flagProviderURL,
				ProviderAPIKey: flagProviderKey,
				Fixture:        flagFixture,
			}

			nonInteractive := p != profile{}
			if !nonInteractive {
				if err := prompt(cmd.InOrStdin(), cmd.OutOrStdout(), &p); err != nil {
					return err
				}
			}

			if p.URL == "" {
				p.URL = defaultURL
			}

			if !noVerify && p.APIKey != "" {
				ver, err := testConnection(cmd.Context(), p.URL, p.APIKey)
				if err != nil {
					return fmt.Errorf("connection failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Connected to degrees %s\n", ver)
			}

			name := flagProfile
			if name == "" {
				name = "default"
			}

			cfgPath, err := writeConfig(name, p)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s (profile %s)\n", cfgPath, name)

			return nil
		},
	}

	cmd.Flags().StringVar(&initURL, "url", "", "degrees server URL (non-interactive mode)")
	cmd.Flags().StringVar(&initAPIKey, "api-key", "", "Server API key (non-interactive mode)")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip the server connection check")

	return cmd
}

func prompt(in io.Reader, out io.Writer, p *profile) error {
	reader := bufio.NewReader(in)

	ask := func(label, fallback string) string {
		if fallback != "" {
			fmt.Fprintf(out, "  %s [%s]: ", label, fallback)
		} else {
			fmt.Fprintf(out, "  %s: ", label)
		}

		line, _ := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
		return fallback
	}

	p.URL = ask("Server URL", defaultURL)
	p.APIKey = ask("Server API key", "")
	p.Provider = ask("Provider (static|http|scrape|postgres)", "static")

	switch p.Provider {
	case "static":
		p.Fixture = ask("Fixture file", "")
	case "http", "scrape":
		p.ProviderURL = ask("Provider URL", "")
		p.ProviderAPIKey = ask("Provider API key", "")
	}

	return nil
}

func testConnection(ctx context.Context, url, apiKey string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	h, err := client.New(url, client.WithAPIKey(apiKey)).Health(ctx)
	if err != nil {
		return "", err
	}

	if h.Version == "" {
		return "unknown", nil
	}
	return h.Version, nil
}

// writeConfig stores p under name, keeping the other profiles of an
// existing file, and makes it the active profile.
func writeConfig(name string, p profile) (string, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
		return "", err
	}

	var f profilesFile

	data, err := os.ReadFile(cfgPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return "", fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", err
	}

	if f.Profiles == nil {
		f.Profiles = make(map[string]profile)
	}
	f.Profiles[name] = p
	f.ActiveProfile = name

	data, err = yaml.Marshal(f)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", err
	}

	return cfgPath, nil
}
