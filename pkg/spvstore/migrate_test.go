package spvstore

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbandi/ltcspv/pkg/blockheader"
	"github.com/bitbandi/ltcspv/pkg/chainparams"
)

func Test_MigrateV1ToV2_Preserves_Records_And_Chain_Head(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := Open(chainparams.MainNet, path, Options{Capacity: 32, Version: V1})
	require.NoError(t, err)

	var inserted []StoredBlock

	for h := int32(1); h <= 5; h++ {
		var raw [blockheader.Size]byte
		raw[0] = byte(h)

		hdr, err := blockheader.Parse(raw[:])
		require.NoError(t, err)

		sb := StoredBlock{Header: hdr, ChainWork: big.NewInt(int64(h)), Height: h}
		require.NoError(t, store.Put(sb))
		inserted = append(inserted, sb)
	}

	last := inserted[len(inserted)-1]
	require.NoError(t, store.SetChainHead(last))
	require.NoError(t, store.Close())

	require.NoError(t, MigrateV1ToV2(path, nil))

	migrated, err := Open(chainparams.MainNet, path, Options{Capacity: 32})
	require.NoError(t, err)
	defer migrated.Close()

	assert.Equal(t, V2, migrated.version)

	for _, sb := range inserted {
		got, found, err := migrated.Get(sb.Hash())
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, sb.Height, got.Height)
		assert.Equal(t, 0, sb.ChainWork.Cmp(got.ChainWork))
	}

	head, err := migrated.ChainHead()
	require.NoError(t, err)
	assert.Equal(t, last.Height, head.Height)
}

// Test_MigrateV1ToV2_Writes_Cursor_One_Past_Last_Migrated_Record hand-crafts
// the spec.md §8.7 scenario directly: a V1 file with a single record at slot
// 0 and the V1 cursor sitting one slot past it. After migration the V2
// cursor must point one slot past the single migrated record, regardless of
// where in the V2 array that record physically landed.
func Test_MigrateV1ToV2_Writes_Cursor_One_Past_Last_Migrated_Record(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	const capacity = 4

	v1Width := RecordWidth(V1)

	var raw [blockheader.Size]byte
	raw[0] = 1

	hdr, err := blockheader.Parse(raw[:])
	require.NoError(t, err)

	genesis := StoredBlock{Header: hdr, ChainWork: big.NewInt(1), Height: 0}
	genesisHash := genesis.Hash()

	body, err := compactSerialize(genesis, V1)
	require.NoError(t, err)

	file := make([]byte, int(fileSize(capacity, v1Width)))
	copy(file[offMagic:offMagic+magicLen], magicV1)
	writeCapacity(file, capacity)
	writeChainHead(file, genesisHash)
	writeCursor(file, indexToCursor(1, v1Width))

	slot0 := file[filePrologueBytes : filePrologueBytes+v1Width]
	copy(slot0[:hashWidth], genesisHash[:])
	copy(slot0[hashWidth:], body)

	require.NoError(t, os.WriteFile(path, file, 0o600))

	require.NoError(t, MigrateV1ToV2(path, nil))

	migrated, err := Open(chainparams.MainNet, path, Options{Capacity: capacity})
	require.NoError(t, err)
	defer migrated.Close()

	v2Width := RecordWidth(V2)
	assert.Equal(t, indexToCursor(1, v2Width), readCursor(migrated.data))

	got, found, err := migrated.Get(genesisHash)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, genesis.Height, got.Height)
}

func Test_MigrateV1ToV2_Rejects_Already_V2_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.dat")

	store, err := Open(chainparams.MainNet, path, Options{Capacity: 8, Version: V2})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = MigrateV1ToV2(path, nil)
	require.Error(t, err)
}
