package checkpoint_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbandi/ltcspv/pkg/chainparams"
	"github.com/bitbandi/ltcspv/pkg/checkpoint"
	"github.com/bitbandi/ltcspv/pkg/spvstore"
)

func Test_Seeder_Seed_Installs_Latest_Checkpoint_Before_Birthday_Minus_Drift_Slack(t *testing.T) {
	t.Parallel()

	blocks := []spvstore.StoredBlock{
		checkpointAt(t, 100, 1_000_000),
		checkpointAt(t, 200, 2_000_000),
		checkpointAt(t, 300, 3_000_000),
	}

	var buf bytes.Buffer
	require.NoError(t, checkpoint.EncodeBinary(&buf, nil, blocks))

	archive, err := checkpoint.NewReader(&buf, chainparams.MainNet)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer store.Close()

	seeder := &checkpoint.Seeder{}
	// Birthday 2,500,000 minus the 7-day drift slack (604,800s) is
	// 1,895,200, which only the height-100 checkpoint (timestamp
	// 1,000,000) precedes.
	require.NoError(t, seeder.Seed(store, archive, time.Unix(2_500_000, 0)))

	head, err := store.ChainHead()
	require.NoError(t, err)
	assert.Equal(t, int32(100), head.Height)
}

func Test_Seeder_Seed_Falls_Back_To_Genesis_When_No_Checkpoint_Precedes_Birthday(t *testing.T) {
	t.Parallel()

	blocks := []spvstore.StoredBlock{checkpointAt(t, 100, 10_000_000)}

	var buf bytes.Buffer
	require.NoError(t, checkpoint.EncodeBinary(&buf, nil, blocks))

	archive, err := checkpoint.NewReader(&buf, chainparams.MainNet)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer store.Close()

	seeder := &checkpoint.Seeder{}
	require.NoError(t, seeder.Seed(store, archive, time.Unix(1_000_000, 0)))

	head, err := store.ChainHead()
	require.NoError(t, err)
	assert.Equal(t, int32(0), head.Height)
	assert.Equal(t, chainparams.MainNet.GenesisHash(), head.Hash())
}
