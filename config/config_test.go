package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"chirp/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chirp.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Validation.MinLength)
	assert.Equal(t, 280, cfg.Validation.MaxLength)
	assert.Equal(t, config.ProviderStatic, cfg.Directory.Provider)
	assert.Empty(t, cfg.Web.SignInUrl, "no sign-in link until a provider page is configured")
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[validation]
max_length = 140

[directory]
provider = "static"

[[directory.profiles]]
id = "u1"
username = "ada"
profile_image_url = "https://img/ada.png"

[[directory.profiles]]
id = "u2"
profile_image_url = "https://img/u2.png"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Validation.MinLength, "min_length keeps its default")
	assert.Equal(t, 140, cfg.Validation.MaxLength)
	require.Len(t, cfg.Directory.Profiles, 2)
	assert.Equal(t, "ada", cfg.Directory.Profiles[0].Username)
	assert.Equal(t, "", cfg.Directory.Profiles[1].Username)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name:     "unknown provider",
			contents: "[directory]\nprovider = \"ldap\"\n",
		},
		{
			name:     "max below min",
			contents: "[validation]\nmin_length = 10\nmax_length = 5\n",
		},
		{
			name:     "profile without id",
			contents: "[[directory.profiles]]\nusername = \"ada\"\n",
		},
		{
			name:     "malformed toml",
			contents: "[validation\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.contents))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
