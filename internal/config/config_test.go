package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")
		t.Setenv("ADMIN_KEY", "secret")
		t.Setenv("STORE_BACKEND", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, BackendPostgres, cfg.StoreBackend)
		assert.Equal(t, 5432, cfg.DB.Port)
		assert.Equal(t, "ledger", cfg.Surreal.Namespace)
		assert.True(t, cfg.SerializeMutations)
		assert.Equal(t, 20, cfg.DepositHistoryLimit)
		assert.False(t, cfg.TrustProxyHeaders)
	})

	t.Run("MissingAdminKey", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")
		t.Setenv("ADMIN_KEY", "")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ADMIN_KEY")
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")
		t.Setenv("ADMIN_KEY", "secret")
		t.Setenv("STORE_BACKEND", "redis")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis")
	})

	t.Run("FileThenEnv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
admin_key = "from-file"
store_backend = "Surreal"
serialize_mutations = false
trust_proxy_headers = true

[db]
host = "db.internal"

[surreal]
namespace = "prod"
`), 0o600))

		t.Setenv(ConfigFileEnv, path)
		t.Setenv("ADMIN_KEY", "")
		t.Setenv("SURREAL_NAMESPACE", "override")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.AdminKey)
		assert.Equal(t, BackendSurreal, cfg.StoreBackend)
		assert.False(t, cfg.SerializeMutations)
		assert.True(t, cfg.TrustProxyHeaders)
		assert.Equal(t, "db.internal", cfg.DB.Host)
		assert.Equal(t, 5432, cfg.DB.Port)
		assert.Equal(t, "override", cfg.Surreal.Namespace)
	})

	t.Run("BadFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("admin_key = "), 0o600))
		t.Setenv(ConfigFileEnv, path)

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
