package spvstore

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/bitbandi/ltcspv/pkg/blockheader"
)

// FormatVersion selects the on-disk width of the cumulative-work field.
type FormatVersion uint8

const (
	// V1 stores cumulative work in 12 bytes (ceiling 2^96 - 1).
	V1 FormatVersion = 1

	// V2 stores cumulative work in 32 bytes.
	V2 FormatVersion = 2
)

func (v FormatVersion) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	default:
		return fmt.Sprintf("FormatVersion(%d)", uint8(v))
	}
}

const (
	workWidthV1 = 12
	workWidthV2 = 32
	heightWidth = 4
	hashWidth   = 32
)

// workWidth returns the on-disk width, in bytes, of the cumulative-work
// field for the given format version.
func workWidth(v FormatVersion) int {
	if v == V1 {
		return workWidthV1
	}

	return workWidthV2
}

// RecordBodyWidth returns the compact-serialized StoredBlock width (work +
// height + header), excluding the enclosing slot's hash field.
func RecordBodyWidth(v FormatVersion) int {
	return workWidth(v) + heightWidth + blockheader.Size
}

// RecordWidth returns the full on-disk slot width: hash ‖ compact-serialized
// StoredBlock.
func RecordWidth(v FormatVersion) int {
	return hashWidth + RecordBodyWidth(v)
}

// StoredBlock is the immutable triple persisted by the store: a block
// header, its cumulative chain work, and its height.
type StoredBlock struct {
	Header    blockheader.Header
	ChainWork *big.Int
	Height    int32
}

// Hash returns the block hash, the StoredBlock's identity.
func (sb StoredBlock) Hash() [32]byte {
	return sb.Header.Hash()
}

// EncodeCheckpointBody serializes sb the same way a ring slot body is
// encoded, for use by checkpoint archives (which store bodies without the
// enclosing hash field, re-deriving it by hashing the header on load).
func EncodeCheckpointBody(sb StoredBlock, v FormatVersion) ([]byte, error) {
	return compactSerialize(sb, v)
}

// DecodeCheckpointBody is the inverse of EncodeCheckpointBody.
func DecodeCheckpointBody(buf []byte, v FormatVersion) (StoredBlock, error) {
	return compactDeserialize(buf, v)
}

// compactSerialize encodes a StoredBlock's body (without the hash) per
// spec.md §4.1: chain_work (big-endian, width depends on version), height
// (32-bit signed big-endian), header (80 bytes verbatim).
func compactSerialize(sb StoredBlock, v FormatVersion) ([]byte, error) {
	if sb.ChainWork == nil || sb.ChainWork.Sign() < 0 {
		return nil, fmt.Errorf("chain work must be a non-negative integer: %w", ErrInvalidInput)
	}

	width := workWidth(v)

	workBytes := sb.ChainWork.Bytes()
	if len(workBytes) > width {
		if v == V1 {
			return nil, fmt.Errorf("%w: value needs %d bytes, V1 allows %d", ErrWorkOverflowV1, len(workBytes), width)
		}

		return nil, fmt.Errorf("chain work does not fit in %d bytes: %w", width, ErrInvalidInput)
	}

	buf := make([]byte, RecordBodyWidth(v))

	// Left-pad the big-endian work bytes into the fixed-width field.
	copy(buf[width-len(workBytes):width], workBytes)

	binary.BigEndian.PutUint32(buf[width:width+heightWidth], uint32(sb.Height))

	raw := sb.Header.Bytes()
	copy(buf[width+heightWidth:], raw[:])

	return buf, nil
}

// compactDeserialize decodes a StoredBlock body previously produced by
// compactSerialize.
func compactDeserialize(buf []byte, v FormatVersion) (StoredBlock, error) {
	want := RecordBodyWidth(v)
	if len(buf) != want {
		return StoredBlock{}, fmt.Errorf("record body length %d != expected %d: %w", len(buf), want, ErrCorrupt)
	}

	width := workWidth(v)

	work := new(big.Int).SetBytes(buf[:width])
	height := int32(binary.BigEndian.Uint32(buf[width : width+heightWidth]))

	hdr, err := blockheader.Parse(buf[width+heightWidth:])
	if err != nil {
		return StoredBlock{}, fmt.Errorf("decoding header: %w: %w", err, ErrCorrupt)
	}

	return StoredBlock{
		Header:    hdr,
		ChainWork: work,
		Height:    height,
	}, nil
}
