package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/degrees/internal/config"
)

// Build-time variables set via ldflags.
var (
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3040"

var (
	flagProfile     string
	flagProvider    string
	flagFixture     string
	flagProviderURL string
	flagProviderKey string
	flagURL         string
	flagKey         string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("degrees version %s (commit: %s, built: %s)", config.Version, commit, buildDate)
	}
	return fmt.Sprintf("degrees version %s", config.Version)
}

// profile holds the settings of one named entry in ~/.degrees/config.yaml.
type profile struct {
	URL            string `yaml:"url,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	Provider       string `yaml:"provider,omitempty"`
	ProviderURL    string `yaml:"provider_url,omitempty"`
	ProviderAPIKey string `yaml:"provider_api_key,omitempty"`
	Fixture        string `yaml:"fixture,omitempty"`
}

// profilesFile is the top-level config file structure.
type profilesFile struct {
	Profiles      map[string]profile `yaml:"profiles"`
	ActiveProfile string             `yaml:"active_profile"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "degrees",
		Short:        "degrees maps entities within N degrees of separation of a seed",
		Version:      versionString(),
		SilenceUsage: true,
	}
	root.SetVersionTemplate("{{.Version}}\n")

	addPersistentFlags(root)

	root.AddCommand(newCrawlCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newPaletteCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newRemoteCmd())
	root.AddCommand(newInitCmd())

	return root
}

func addPersistentFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&flagProfile, "profile", "", "Config file profile (default: active_profile)")
	pf.StringVar(&flagProvider, "provider", "", "Provider: static|http|scrape|postgres (env: DEGREES_PROVIDER)")
	pf.StringVar(&flagFixture, "fixture", "", "Fixture file for the static provider (env: DEGREES_FIXTURE)")
	pf.StringVar(&flagProviderURL, "provider-url", "", "Base URL of the http or scrape provider (env: DEGREES_PROVIDER_URL)")
	pf.StringVar(&flagProviderKey, "provider-key", "", "Provider API key (env: DEGREES_API_KEY)")
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".degrees", "config.yaml"), nil
}

// loadProfile returns the selected profile of the config file. A missing
// file yields the zero profile.
func loadProfile() (profile, error) {
	path, err := configPath()
	if err != nil {
		return profile{}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return profile{}, nil
	}
	if err != nil {
		return profile{}, fmt.Errorf("read %s: %w", path, err)
	}

	var f profilesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return profile{}, fmt.Errorf("parse %s: %w", path, err)
	}

	name := f.ActiveProfile
	if flagProfile != "" {
		name = flagProfile
	}
	if name == "" {
		name = "default"
	}

	p, ok := f.Profiles[name]
	if !ok && flagProfile != "" {
		return profile{}, fmt.Errorf("profile %q not found in %s", name, path)
	}

	return p, nil
}

// pick resolves one setting: flag, then environment (already held in
// current), then profile.
func pick(flagVal, envKey, profVal, current string) string {
	switch {
	case flagVal != "":
		return flagVal
	case os.Getenv(envKey) != "":
		return current
	case profVal != "":
		return profVal
	default:
		return current
	}
}

// resolveConfig builds the local provider configuration. Flags take
// precedence, then env, then the config file profile.
func resolveConfig() (*config.Config, error) {
	p, err := loadProfile()
	if err != nil {
		return nil, err
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	cfg.Provider = config.ProviderKind(pick(flagProvider, "DEGREES_PROVIDER", p.Provider, string(cfg.Provider)))
	cfg.FixturePath = pick(flagFixture, "DEGREES_FIXTURE", p.Fixture, cfg.FixturePath)
	cfg.ProviderURL = pick(flagProviderURL, "DEGREES_PROVIDER_URL", p.ProviderURL, cfg.ProviderURL)
	cfg.APIKey = config.Secret(pick(flagProviderKey, "DEGREES_API_KEY", p.ProviderAPIKey, cfg.APIKey.Value()))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// resolveRemote fills flagURL and flagKey for commands that talk to a
// degrees server.
func resolveRemote() error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	if flagURL == defaultURL {
		if v := os.Getenv("DEGREES_URL"); v != "" {
			flagURL = v
		} else if p.URL != "" {
			flagURL = p.URL
		}
	}

	if flagKey == "" {
		if v := os.Getenv("DEGREES_SERVER_API_KEY"); v != "" {
			flagKey = v
		} else {
			flagKey = p.APIKey
		}
	}

	return nil
}
