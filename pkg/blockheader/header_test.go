package blockheader_test

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbandi/ltcspv/pkg/blockheader"
)

func Test_Parse_Returns_Error_When_Length_Is_Wrong(t *testing.T) {
	t.Parallel()

	_, err := blockheader.Parse(make([]byte, blockheader.Size-1))
	require.ErrorIs(t, err, blockheader.ErrInvalidLength)
}

func Test_Parse_Decodes_Fields_In_Wire_Order(t *testing.T) {
	t.Parallel()

	raw := make([]byte, blockheader.Size)
	raw[0] = 0x02 // version = 2, little-endian
	raw[68] = 0x01
	raw[76] = 0x2a

	h, err := blockheader.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, int32(2), h.Version)
	assert.Equal(t, uint32(1), h.Timestamp)
	assert.Equal(t, uint32(0x2a), h.Nonce)
	assert.Equal(t, [blockheader.Size]byte(raw), h.Bytes())
}

func Test_Hash_Is_Double_SHA256_Of_Raw_Bytes(t *testing.T) {
	t.Parallel()

	var raw [blockheader.Size]byte

	h, err := blockheader.Parse(raw[:])
	require.NoError(t, err)

	want := blockheader.Hash(raw)
	assert.Equal(t, want, h.Hash())

	first := sha256.Sum256(raw[:])
	assert.Equal(t, sha256.Sum256(first[:]), want)

	// Changing a single byte must change the hash.
	raw[10] = 0xff
	assert.NotEqual(t, want, blockheader.Hash(raw))
}
