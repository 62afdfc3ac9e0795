package spvconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbandi/ltcspv/pkg/spvconfig"
)

func Test_Load_Returns_Default_When_File_Missing(t *testing.T) {
	t.Parallel()

	cfg, err := spvconfig.Load(filepath.Join(t.TempDir(), "does-not-exist.jsonc"))
	require.NoError(t, err)
	assert.Equal(t, spvconfig.Default(), cfg)
}

func Test_Load_Parses_Commented_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `{
		// uses the litecoin mainnet genesis
		"network": "mainnet",
		"store_path": "/var/lib/wallet/headers.dat",
		"capacity": 500000,
	}`

	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := spvconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "/var/lib/wallet/headers.dat", cfg.StorePath)
	assert.Equal(t, uint64(500000), cfg.Capacity)
}

func Test_Load_Rejects_Missing_StorePath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"network": "mainnet", "capacity": 1}`), 0o600))

	_, err := spvconfig.Load(path)
	require.ErrorIs(t, err, spvconfig.ErrConfigInvalid)
}

func Test_Load_Rejects_Malformed_Json(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := spvconfig.Load(path)
	require.ErrorIs(t, err, spvconfig.ErrConfigInvalid)
}
