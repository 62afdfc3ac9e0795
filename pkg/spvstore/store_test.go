package spvstore_test

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbandi/ltcspv/pkg/blockheader"
	"github.com/bitbandi/ltcspv/pkg/chainparams"
	"github.com/bitbandi/ltcspv/pkg/spvstore"
)

func blockAt(t *testing.T, height int32) spvstore.StoredBlock {
	t.Helper()

	var raw [blockheader.Size]byte
	raw[0] = byte(height)
	raw[1] = byte(height >> 8)
	raw[2] = byte(height >> 16)
	raw[3] = byte(height >> 24)

	hdr, err := blockheader.Parse(raw[:])
	require.NoError(t, err)

	return spvstore.StoredBlock{
		Header:    hdr,
		ChainWork: big.NewInt(int64(height) + 1),
		Height:    height,
	}
}

func Test_Open_Creates_File_Seeded_With_Genesis(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer store.Close()

	head, err := store.ChainHead()
	require.NoError(t, err)
	assert.Equal(t, chainparams.MainNet.GenesisHash(), head.Hash())
}

func Test_Put_Then_Get_Returns_Same_Block(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer store.Close()

	sb := blockAt(t, 100)
	require.NoError(t, store.Put(sb))

	got, found, err := store.Get(sb.Hash())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sb.Height, got.Height)
	assert.Equal(t, 0, sb.ChainWork.Cmp(got.ChainWork))
}

func Test_Get_Reports_Not_Found_For_Unknown_Hash(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer store.Close()

	_, found, err := store.Get([32]byte{0xde, 0xad})
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_SetChainHead_Does_Not_Insert_The_Block(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer store.Close()

	sb := blockAt(t, 7)
	require.NoError(t, store.SetChainHead(sb))

	_, found, err := store.Get(sb.Hash())
	require.NoError(t, err)
	assert.False(t, found)

	_, err = store.ChainHead()
	require.Error(t, err)
}

func Test_SetChainHead_Points_At_Previously_Put_Block(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer store.Close()

	sb := blockAt(t, 7)
	require.NoError(t, store.Put(sb))
	require.NoError(t, store.SetChainHead(sb))

	head, err := store.ChainHead()
	require.NoError(t, err)
	assert.Equal(t, sb.Height, head.Height)
}

func Test_Open_Twice_On_Same_Path_Returns_ErrFileLocked(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	first, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer first.Close()

	_, err = spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.ErrorIs(t, err, spvstore.ErrFileLocked)
}

func Test_Reopen_With_Different_Capacity_Without_GrowOK_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 32})
	require.ErrorIs(t, err, spvstore.ErrCapacityMismatch)

	var mismatch *spvstore.CapacityMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, uint64(32), mismatch.Requested)
	assert.Equal(t, uint64(16), mismatch.Actual)
}

func Test_Reopen_Smaller_Capacity_Is_Always_Refused(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 32})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16, GrowOK: true})
	require.ErrorIs(t, err, spvstore.ErrShrinkNotAllowed)
}

func Test_Reopen_With_GrowOK_Extends_Capacity_And_Preserves_Records(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 8})
	require.NoError(t, err)

	sb := blockAt(t, 3)
	require.NoError(t, store.Put(sb))
	require.NoError(t, store.Close())

	grown, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 64, GrowOK: true})
	require.NoError(t, err)
	defer grown.Close()

	got, found, err := grown.Get(sb.Hash())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sb.Height, got.Height)
}

func Test_Clear_Resets_Ring_To_Genesis_Only(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: 16})
	require.NoError(t, err)
	defer store.Close()

	sb := blockAt(t, 9)
	require.NoError(t, store.Put(sb))

	require.NoError(t, store.Clear())

	_, found, err := store.Get(sb.Hash())
	require.NoError(t, err)
	assert.False(t, found)

	head, err := store.ChainHead()
	require.NoError(t, err)
	assert.Equal(t, chainparams.MainNet.GenesisHash(), head.Hash())
}

func Test_Ring_Evicts_Oldest_Slot_When_Full(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	const capacity = 4

	store, err := spvstore.Open(chainparams.MainNet, path, spvstore.Options{Capacity: capacity})
	require.NoError(t, err)
	defer store.Close()

	// Genesis already occupies one slot; fill the rest and force eviction.
	var inserted []spvstore.StoredBlock
	for h := int32(1); h <= capacity+4; h++ {
		sb := blockAt(t, h)
		require.NoError(t, store.Put(sb))
		inserted = append(inserted, sb)
	}

	present := 0

	for _, sb := range inserted {
		_, found, err := store.Get(sb.Hash())
		require.NoError(t, err)

		if found {
			present++
		}
	}

	assert.LessOrEqual(t, present, capacity)
}

func Test_FileSize_Matches_V2_Layout(t *testing.T) {
	t.Parallel()

	size := spvstore.FileSize(10)
	assert.Greater(t, size, int64(0))
	assert.Equal(t, size, spvstore.FileSize(10))

	// 4096-byte prologue plus 10 V2 slots of hash(32) + work(32) + height(4) + header(80).
	assert.Equal(t, int64(4096+10*(32+32+4+80)), size)
}
