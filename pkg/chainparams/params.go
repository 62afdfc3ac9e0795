// Package chainparams carries the small, per-network surface the store and
// checkpoint reader need from the (out-of-scope) validation engine: a
// network name, the genesis header and the genesis chain work. Modeled on chaincfg.Params in
// pkt-cash-PKT-FullNode, trimmed to the fields an SPV header store actually
// consumes.
package chainparams

import (
	"math/big"

	"github.com/bitbandi/ltcspv/pkg/blockheader"
)

// Params describes the chain-specific constants a header store needs.
type Params struct {
	// Name identifies the network, e.g. "mainnet", "testnet4".
	Name string

	// GenesisHeader is the raw 80-byte genesis block header.
	GenesisHeader [blockheader.Size]byte

	// GenesisWork is the cumulative chain work assigned to genesis.
	GenesisWork *big.Int
}

// Genesis returns the parsed genesis header.
func (p *Params) Genesis() blockheader.Header {
	h, err := blockheader.Parse(p.GenesisHeader[:])
	if err != nil {
		// GenesisHeader is always exactly blockheader.Size bytes by type;
		// Parse can only fail on length mismatch.
		panic(err)
	}

	return h
}

// GenesisHash returns the hash of the genesis header.
func (p *Params) GenesisHash() [32]byte {
	return blockheader.Hash(p.GenesisHeader)
}

// Litecoin mainnet genesis header, verbatim wire bytes (version, prev-block
// of all zero, merkle root, timestamp, bits, nonce).
var litecoinMainNetGenesis = [blockheader.Size]byte{
	0x01, 0x00, 0x00, 0x00, // version = 1
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // prev block
	0xd9, 0xce, 0xd4, 0xed, 0x11, 0x30, 0xf7, 0xb7, 0xfa, 0xad, 0x9b, 0xe2,
	0x53, 0x23, 0xff, 0xaf, 0xa3, 0x32, 0x32, 0xa1, 0x7c, 0x3e, 0xdf, 0x6c,
	0xfd, 0x97, 0xbe, 0xe6, 0xba, 0xfb, 0xdd, 0x97, // merkle root
	0xb9, 0xaa, 0x8e, 0x4e, // timestamp (2011-10-07 07:31:05 UTC)
	0xf0, 0xff, 0x0f, 0x1e, // bits
	0xcd, 0x51, 0x3f, 0x7c, // nonce
}

// MainNet is the Litecoin main network's genesis-anchored parameters.
var MainNet = &Params{
	Name:          "mainnet",
	GenesisHeader: litecoinMainNetGenesis,
	GenesisWork:   big.NewInt(1),
}
