package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	opts, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, util.DefaultOptions(), opts)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[engine]
path        = /tmp/test.db
pool_size   = 64
policy      = clock
sync_writes = true
log_level   = debug
`)
	opts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", opts.Path)
	assert.Equal(t, 64, opts.PoolSize)
	assert.Equal(t, util.PolicyClock, opts.Policy)
	assert.True(t, opts.SyncWrites)
	assert.Equal(t, "debug", opts.LogLevel)
}

func TestLoadPartial(t *testing.T) {
	path := writeConfig(t, "[engine]\npool_size = 8\n")
	opts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, util.PolicyLRU, opts.Policy, "absent keys keep defaults")
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.ini"))
		assert.Error(t, err)
	})

	t.Run("UnknownPolicy", func(t *testing.T) {
		path := writeConfig(t, "[engine]\npolicy = mru\n")
		_, err := Load(path)
		assert.ErrorIs(t, err, util.ErrUnknownPolicy)
	})

	t.Run("InvalidPoolSize", func(t *testing.T) {
		path := writeConfig(t, "[engine]\npool_size = 0\n")
		_, err := Load(path)
		assert.ErrorIs(t, err, util.ErrInvalidPoolSize)
	})
}
