package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Directory providers understood by the serve command
const (
	ProviderClerk   = "clerk"
	ProviderBluesky = "bluesky"
	ProviderStatic  = "static"
)

// TomlValidation holds the limits applied to new post content
type TomlValidation struct {
	MinLength int `toml:"min_length"`
	MaxLength int `toml:"max_length"`
}

// TomlProfile is a directory profile declared in the config file
type TomlProfile struct {
	Id              string `toml:"id"`
	Username        string `toml:"username,omitempty"`
	ProfileImageUrl string `toml:"profile_image_url"`
}

// TomlDirectory configures the external user directory
type TomlDirectory struct {
	Provider string `toml:"provider"`
	// Base URL of the Clerk-style user API
	ApiUrl string `toml:"api_url,omitempty"`
	// AppView host used for the bluesky provider
	BlueskyHost string        `toml:"bluesky_host,omitempty"`
	Profiles    []TomlProfile `toml:"profiles,omitempty"`
}

// TomlWeb configures the HTML pages
type TomlWeb struct {
	// Sign-in page of the external identity provider. Chirp serves no
	// sign-in route of its own, so this must be an absolute URL or a path
	// routed to the provider. Empty hides the sign-in link.
	SignInUrl string `toml:"sign_in_url"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Validation TomlValidation `toml:"validation"`
	Directory  TomlDirectory  `toml:"directory"`
	Web        TomlWeb        `toml:"web"`
}

// Default returns the configuration used when no file is given
func Default() *TomlConfig {
	return &TomlConfig{
		Validation: TomlValidation{
			MinLength: 1,
			MaxLength: 280,
		},
		Directory: TomlDirectory{
			Provider:    ProviderStatic,
			ApiUrl:      "https://api.clerk.com",
			BlueskyHost: "https://public.api.bsky.app",
		},
		// No sign-in link until the identity provider is configured
		Web: TomlWeb{},
	}
}

// LoadConfig reads the TOML file at path on top of the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (*TomlConfig, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// Validate checks the values that would otherwise fail at request time
func (c *TomlConfig) Validate() error {
	if c.Validation.MinLength < 1 {
		return errors.New("validation.min_length must be at least 1")
	}
	if c.Validation.MaxLength < c.Validation.MinLength {
		return errors.New("validation.max_length must not be less than validation.min_length")
	}

	switch c.Directory.Provider {
	case ProviderClerk:
		if c.Directory.ApiUrl == "" {
			return errors.New("directory.api_url is required for the clerk provider")
		}
	case ProviderBluesky:
		if c.Directory.BlueskyHost == "" {
			return errors.New("directory.bluesky_host is required for the bluesky provider")
		}
	case ProviderStatic:
		for i, p := range c.Directory.Profiles {
			if p.Id == "" {
				return fmt.Errorf("directory.profiles[%d] is missing an id", i)
			}
		}
	default:
		return fmt.Errorf("unknown directory provider %q", c.Directory.Provider)
	}

	return nil
}
