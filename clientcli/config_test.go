package clientcli_test

import (
	"path/filepath"
	"testing"

	"github.com/sagarc03/imagevault/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFile_GetProfile(t *testing.T) {
	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "dev", Endpoint: "http://localhost:5790"},
			{Name: "prod", Endpoint: "https://vault.example.com", Default: true},
		},
	}

	t.Run("by name", func(t *testing.T) {
		p, err := cfg.GetProfile("dev")
		require.NoError(t, err)
		assert.Equal(t, "dev", p.Name)
	})

	t.Run("empty name returns default", func(t *testing.T) {
		p, err := cfg.GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, "prod", p.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := cfg.GetProfile("staging")
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("no profiles", func(t *testing.T) {
		empty := &clientcli.ConfigFile{}
		_, err := empty.GetProfile("dev")
		assert.ErrorIs(t, err, clientcli.ErrNoProfiles)
	})
}

func TestConfigFile_GetDefaultProfile_FallsBackToFirst(t *testing.T) {
	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "first", Endpoint: "http://a"},
			{Name: "second", Endpoint: "http://b"},
		},
	}

	p, err := cfg.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "first", p.Name)
}

func TestConfigFile_AddProfile(t *testing.T) {
	cfg := &clientcli.ConfigFile{}

	err := cfg.AddProfile(clientcli.Profile{Name: "dev", Endpoint: "http://localhost:5790"})
	require.NoError(t, err)
	assert.Len(t, cfg.Profiles, 1)

	err = cfg.AddProfile(clientcli.Profile{Name: "dev", Endpoint: "http://other"})
	assert.ErrorIs(t, err, clientcli.ErrProfileExists)
	assert.Len(t, cfg.Profiles, 1)
}

func TestConfigFile_UpdateProfile(t *testing.T) {
	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{{Name: "dev", Endpoint: "http://old"}},
	}

	err := cfg.UpdateProfile(clientcli.Profile{Name: "dev", Endpoint: "http://new"})
	require.NoError(t, err)
	assert.Equal(t, "http://new", cfg.Profiles[0].Endpoint)

	err = cfg.UpdateProfile(clientcli.Profile{Name: "missing"})
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
}

func TestConfigFile_RemoveProfile(t *testing.T) {
	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "dev"},
			{Name: "prod"},
		},
	}

	err := cfg.RemoveProfile("dev")
	require.NoError(t, err)
	require.Len(t, cfg.Profiles, 1)
	assert.Equal(t, "prod", cfg.Profiles[0].Name)

	err = cfg.RemoveProfile("dev")
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
}

func TestConfigFile_SetDefault(t *testing.T) {
	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "dev", Default: true},
			{Name: "prod"},
		},
	}

	err := cfg.SetDefault("prod")
	require.NoError(t, err)
	assert.False(t, cfg.Profiles[0].Default)
	assert.True(t, cfg.Profiles[1].Default)

	err = cfg.SetDefault("missing")
	assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &clientcli.ConfigFile{
		Profiles: []clientcli.Profile{
			{Name: "dev", Endpoint: "http://localhost:5790", Owner: "alice", Default: true},
			{Name: "prod", Endpoint: "https://vault.example.com"},
		},
	}

	require.NoError(t, cfg.Save(path))

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Profiles, loaded.Profiles)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := clientcli.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := (&clientcli.Config{}).WithDefaults()
	assert.Equal(t, clientcli.DefaultEndpoint, cfg.Endpoint)

	cfg = (&clientcli.Config{Endpoint: "http://custom"}).WithDefaults()
	assert.Equal(t, "http://custom", cfg.Endpoint)
}

func TestConfigFromProfile(t *testing.T) {
	cfg := clientcli.ConfigFromProfile(&clientcli.Profile{Endpoint: "http://a", Owner: "alice"})
	assert.Equal(t, "http://a", cfg.Endpoint)
	assert.Equal(t, "alice", cfg.Owner)

	cfg = clientcli.ConfigFromProfile(nil)
	assert.Empty(t, cfg.Endpoint)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("IMAGEVAULT_ENDPOINT", "http://env-server")
	t.Setenv("IMAGEVAULT_OWNER", "env-owner")

	cfg := clientcli.ConfigFromEnv()
	assert.Equal(t, "http://env-server", cfg.Endpoint)
	assert.Equal(t, "env-owner", cfg.Owner)
}

func TestProfileFromEnv(t *testing.T) {
	t.Setenv("IMAGEVAULT_PROFILE", "staging")
	assert.Equal(t, "staging", clientcli.ProfileFromEnv())
}

func TestMergeConfig(t *testing.T) {
	base := &clientcli.Config{Endpoint: "http://base", Owner: "base-owner"}
	override := &clientcli.Config{Owner: "override-owner"}

	merged := clientcli.MergeConfig(base, override)
	assert.Equal(t, "http://base", merged.Endpoint)
	assert.Equal(t, "override-owner", merged.Owner)

	merged = clientcli.MergeConfig(nil, base, nil)
	assert.Equal(t, "http://base", merged.Endpoint)
}
