package chainparams_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitbandi/ltcspv/pkg/chainparams"
)

func Test_MainNet_Genesis_Parses_Without_Error(t *testing.T) {
	t.Parallel()

	h := chainparams.MainNet.Genesis()
	assert.Equal(t, int32(1), h.Version)
}

func Test_MainNet_GenesisHash_Is_Deterministic(t *testing.T) {
	t.Parallel()

	a := chainparams.MainNet.GenesisHash()
	b := chainparams.MainNet.GenesisHash()
	assert.Equal(t, a, b)
	assert.NotEqual(t, [32]byte{}, a)
}
