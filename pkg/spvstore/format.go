package spvstore

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// File layout, per spec.md §3:
//
//	[0..4)    magic
//	[4..8)    ring cursor: byte offset of the slot the next insert into a full ring evicts
//	[8..40)   chain-head hash (32 bytes)
//	[40..filePrologueBytes) reserved
//	[filePrologueBytes, filePrologueBytes + N*R) slot array
//
// The reserved region is not part of the spec's described invariants, but
// its structure is ours to define: we use it to persist the configured
// capacity (so open-time validation doesn't have to infer it solely from
// file size ÷ record width) and a generation counter used as a seqlock for
// readers observing the cursor and chain-head together (spec.md §5, §9).
const (
	magicV1 = "SPV1"
	magicV2 = "SPVB"

	filePrologueBytes = 4096

	offMagic      = 0
	offCursor     = 4
	offChainHead  = 8
	offCapacity   = 40
	offGeneration = 48

	magicLen = 4
)

// magicFor returns the bit-exact magic bytes for a format version.
func magicFor(v FormatVersion) string {
	if v == V1 {
		return magicV1
	}

	return magicV2
}

// slotOffset returns the byte offset of slot index i within the mapped file,
// for the given record width.
func slotOffset(i uint64, recordWidth int) int64 {
	return int64(filePrologueBytes) + int64(i)*int64(recordWidth)
}

// fileSize returns the total file size for a given capacity and record width.
func fileSize(capacity uint64, recordWidth int) int64 {
	return int64(filePrologueBytes) + int64(capacity)*int64(recordWidth)
}

// indexToCursor converts a slot index into the byte-offset ring cursor value
// spec.md §3 stores on disk: FILE_PROLOGUE_BYTES + index*recordWidth.
func indexToCursor(idx uint64, recordWidth int) uint32 {
	return uint32(slotOffset(idx, recordWidth))
}

// cursorToIndex is the inverse of indexToCursor.
func cursorToIndex(cursor uint32, recordWidth int) uint64 {
	return uint64(cursor-filePrologueBytes) / uint64(recordWidth)
}

// --- atomic access to the mapped prologue ---
//
// spec.md §5 requires a release on chain-head/cursor stores observed by an
// acquire on the corresponding loads. We implement this with a generation
// counter (even = stable, odd = write in progress) bracketing every
// prologue mutation, the same seqlock shape pkg/slotcache uses for its
// header. Unlike slotcache we don't need a separate bucket index to keep
// consistent, so a single counter covering cursor+head is sufficient.

func atomicLoadUint32(b []byte) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&b[0])))
}

func atomicStoreUint32(b []byte, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&b[0])), v)
}

func atomicLoadUint64(b []byte) uint64 {
	return atomic.LoadUint64((*uint64)(unsafe.Pointer(&b[0])))
}

func atomicStoreUint64(b []byte, v uint64) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&b[0])), v)
}

func readGeneration(data []byte) uint64 {
	return atomicLoadUint64(data[offGeneration : offGeneration+8])
}

func beginWrite(data []byte) uint64 {
	gen := readGeneration(data)
	atomicStoreUint64(data[offGeneration:offGeneration+8], gen+1)

	return gen + 1
}

func endWrite(data []byte) {
	gen := readGeneration(data)
	atomicStoreUint64(data[offGeneration:offGeneration+8], gen+1)
}

func readCursor(data []byte) uint32 {
	return atomicLoadUint32(data[offCursor : offCursor+4])
}

func writeCursor(data []byte, v uint32) {
	atomicStoreUint32(data[offCursor:offCursor+4], v)
}

func readCapacity(data []byte) uint64 {
	return binary.LittleEndian.Uint64(data[offCapacity : offCapacity+8])
}

func writeCapacity(data []byte, v uint64) {
	binary.LittleEndian.PutUint64(data[offCapacity:offCapacity+8], v)
}

func readChainHead(data []byte) [32]byte {
	var h [32]byte
	copy(h[:], data[offChainHead:offChainHead+32])

	return h
}

func writeChainHead(data []byte, hash [32]byte) {
	copy(data[offChainHead:offChainHead+32], hash[:])
}

// isZeroHash reports whether hash is the empty-slot / genesis sentinel.
func isZeroHash(hash [32]byte) bool {
	for _, b := range hash {
		if b != 0 {
			return false
		}
	}

	return true
}
