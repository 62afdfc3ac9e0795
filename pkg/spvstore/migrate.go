package spvstore

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

// MigrateV1ToV2 rewrites a V1-format store file at path into V2 format,
// widening the cumulative-work field from 12 to 32 bytes. The conversion is
// performed into a temporary buffer and installed with an atomic rename
// (github.com/natefinch/atomic), so a crash mid-migration leaves the
// original V1 file intact rather than a half-written V2 one.
//
// Per spec.md §4.2, migration walks the V1 ring in cursor order (the V1
// cursor's slot first, oldest entry first, wrapping through the full
// capacity), decoding each occupied slot via the V1 codec and re-encoding it
// via the V2 codec. Each record is placed where the store's lookup probe
// looks for it: the first free slot at or after its hash's start index
// (hash[0:4] mod capacity), so V2 slot positions do not follow V1 order. The
// chain head hash carries over unchanged; the new cursor is set to slot
// index migrated (the number of records carried over), wrapping to slot 0
// when every slot was filled.
func MigrateV1ToV2(path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	src, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat source file: %w", err)
	}

	size := info.Size()
	if size < filePrologueBytes {
		return fmt.Errorf("file size %d smaller than prologue: %w", size, ErrCorrupt)
	}

	header := make([]byte, filePrologueBytes)
	if _, err := src.ReadAt(header, 0); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	version, err := detectVersion(header)
	if err != nil {
		return err
	}

	if version != V1 {
		return fmt.Errorf("spvstore: file is already %s, nothing to migrate", version)
	}

	v1Width := RecordWidth(V1)
	capacity := readCapacity(header)
	chainHead := readChainHead(header)
	v1CursorIdx := cursorToIndex(readCursor(header), v1Width)

	slots := make([]byte, size-filePrologueBytes)
	if _, err := src.ReadAt(slots, filePrologueBytes); err != nil {
		return fmt.Errorf("reading slot region: %w", err)
	}

	v2Width := RecordWidth(V2)
	out := make([]byte, filePrologueBytes+int64(capacity)*int64(v2Width))
	copy(out[offMagic:offMagic+magicLen], magicFor(V2))
	writeCapacity(out, capacity)
	writeChainHead(out, chainHead)

	migrated := uint64(0)

	for i := uint64(0); i < capacity; i++ {
		srcIdx := (v1CursorIdx + i) % capacity
		v1Slot := slots[srcIdx*uint64(v1Width) : (srcIdx+1)*uint64(v1Width)]

		var hash [32]byte
		copy(hash[:], v1Slot[:hashWidth])

		if isZeroHash(hash) {
			continue
		}

		sb, err := compactDeserialize(v1Slot[hashWidth:], V1)
		if err != nil {
			return fmt.Errorf("decoding V1 slot %d: %w", srcIdx, err)
		}

		body, err := compactSerialize(sb, V2)
		if err != nil {
			return fmt.Errorf("re-encoding slot %d as V2: %w", srcIdx, err)
		}

		dstIdx := indexFromHash(hash, capacity)
		for !isZeroHash([32]byte(out[slotOffset(dstIdx, v2Width):][:hashWidth])) {
			dstIdx = (dstIdx + 1) % capacity
		}

		dstOff := slotOffset(dstIdx, v2Width)
		slot := out[dstOff : dstOff+int64(v2Width)]
		copy(slot[:hashWidth], hash[:])
		copy(slot[hashWidth:], body)
		migrated++
	}

	cursorIdx := migrated
	if cursorIdx == capacity {
		cursorIdx = 0
	}

	writeCursor(out, indexToCursor(cursorIdx, v2Width))

	if err := atomic.WriteFile(path, bytes.NewReader(out)); err != nil {
		return fmt.Errorf("installing migrated file: %w", err)
	}

	logger.Info("migrated store V1 to V2", zap.String("path", path), zap.Uint64("records", migrated), zap.Uint64("capacity", capacity))

	return nil
}
