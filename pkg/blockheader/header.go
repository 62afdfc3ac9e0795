// Package blockheader decodes and hashes the 80-byte Bitcoin/Litecoin block
// header, the collaborator type the rest of this module treats as opaque
// bytes carried alongside cumulative work and height.
package blockheader

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
)

// Size is the fixed wire length of a block header in bytes.
const Size = 80

// ErrInvalidLength is returned by Parse when the input is not exactly Size bytes.
var ErrInvalidLength = errors.New("blockheader: invalid length")

// Header is a decoded view over a raw 80-byte header. Raw is the canonical
// form used for hashing and storage; the other fields are read-only
// conveniences derived from it.
type Header struct {
	Raw [Size]byte

	Version    int32
	PrevBlock  [32]byte
	MerkleRoot [32]byte
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// Parse decodes a raw 80-byte header. It does not validate proof-of-work or
// any consensus rule — that is the validation engine's job, out of scope here.
func Parse(raw []byte) (Header, error) {
	if len(raw) != Size {
		return Header{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(raw), Size)
	}

	var h Header
	copy(h.Raw[:], raw)

	h.Version = int32(binary.LittleEndian.Uint32(raw[0:4]))
	copy(h.PrevBlock[:], raw[4:36])
	copy(h.MerkleRoot[:], raw[36:68])
	h.Timestamp = binary.LittleEndian.Uint32(raw[68:72])
	h.Bits = binary.LittleEndian.Uint32(raw[72:76])
	h.Nonce = binary.LittleEndian.Uint32(raw[76:80])

	return h, nil
}

// Bytes returns the canonical 80-byte wire encoding.
func (h Header) Bytes() [Size]byte {
	return h.Raw
}

// Hash returns the block hash: double-SHA256 of the raw header, byte order
// as produced by the digest (not reversed for display).
func (h Header) Hash() [32]byte {
	return Hash(h.Raw)
}

// Hash computes the double-SHA256 block hash of a raw 80-byte header.
func Hash(raw [Size]byte) [32]byte {
	first := sha256.Sum256(raw[:])
	return sha256.Sum256(first[:])
}
