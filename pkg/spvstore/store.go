// Package spvstore implements the Mapped Ring Store: a fixed-capacity,
// memory-mapped, crash-survivable header store keyed by block hash, with
// O(1) average lookup via open-addressed linear probing performed directly
// over the ring buffer that also holds the records. Modeled on
// pkg/slotcache's mmap/header/seqlock approach, specialized to a single
// fixed-key (32-byte hash) ring instead of a general key/value cache.
package spvstore

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bitbandi/ltcspv/internal/lockfile"
	"github.com/bitbandi/ltcspv/pkg/chainparams"
)

// Retry configuration for read operations racing a concurrent writer's
// seqlock generation bump. Same shape as pkg/slotcache's reader backoff.
const (
	readMaxRetries     = 10
	readInitialBackoff = 50 * time.Microsecond
	readMaxBackoff     = 1 * time.Millisecond
)

func readBackoff(attempt int) {
	if attempt == 0 {
		return
	}

	backoff := min(readInitialBackoff<<(attempt-1), readMaxBackoff)
	<-time.After(backoff)
}

// fileIdentity uniquely identifies a file by device and inode, used to
// coordinate in-process readers and writers of the same underlying file
// opened through two different *Store handles.
type fileIdentity struct {
	dev uint64
	ino uint64
}

type registryEntry struct {
	mu sync.RWMutex
}

var globalRegistry sync.Map // map[fileIdentity]*registryEntry

func getOrCreateRegistryEntry(id fileIdentity) *registryEntry {
	if v, ok := globalRegistry.Load(id); ok {
		return v.(*registryEntry) //nolint:forcetypeassert
	}

	entry := &registryEntry{}
	actual, _ := globalRegistry.LoadOrStore(id, entry)

	return actual.(*registryEntry) //nolint:forcetypeassert
}

func fileIdentityOf(f *os.File) (fileIdentity, error) {
	var st syscall.Stat_t
	if err := syscall.Fstat(int(f.Fd()), &st); err != nil {
		return fileIdentity{}, err
	}

	return fileIdentity{dev: uint64(st.Dev), ino: st.Ino}, nil
}

// Options configures Open.
type Options struct {
	// Capacity is the number of slots the ring buffer should have.
	Capacity uint64

	// GrowOK permits Open to extend an existing smaller file up to
	// Capacity. Shrinking an existing file is never permitted.
	GrowOK bool

	// Version selects the on-disk record format for newly created files.
	// Ignored when opening an existing file, whose on-disk version wins.
	Version FormatVersion

	// Logger receives structured diagnostics. A no-op logger is used if nil.
	Logger *zap.Logger
}

// Store is a single open handle to a Mapped Ring Store file.
type Store struct {
	mu sync.Mutex // serializes writers against this handle

	fd       *os.File
	data     []byte
	fileSize int64

	path     string
	lock     *lockfile.Lock
	identity fileIdentity
	registry *registryEntry

	version     FormatVersion
	recordWidth int
	bodyWidth   int
	capacity    uint64

	params *chainparams.Params
	logger *zap.Logger
	hints  *slotHint

	closed bool
}

// FileSize returns the total on-disk size of a Mapped Ring Store file with
// the given capacity, using the current (V2) record format. Callers
// planning disk space for a new store should use this rather than
// hardcoding the prologue and record widths.
func FileSize(capacity uint64) int64 {
	return fileSize(capacity, RecordWidth(V2))
}

// Open opens or creates a Mapped Ring Store file at path.
func Open(params *chainparams.Params, path string, opts Options) (*Store, error) {
	if opts.Capacity == 0 {
		return nil, fmt.Errorf("capacity must be > 0: %w", ErrInvalidInput)
	}

	if opts.Version != V1 && opts.Version != V2 {
		opts.Version = V2
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lock, err := lockfile.TryLock(path + ".lock")
	if err != nil {
		if errors.Is(err, lockfile.ErrWouldBlock) {
			return nil, ErrFileLocked
		}

		return nil, fmt.Errorf("acquiring store lock: %w", err)
	}

	store, err := openLocked(params, path, opts, logger, lock)
	if err != nil {
		_ = lock.Close()

		return nil, err
	}

	return store, nil
}

func openLocked(params *chainparams.Params, path string, opts Options, logger *zap.Logger, lock *lockfile.Lock) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening store file: %w", err)
		}

		return createNewStore(params, path, opts, logger, lock)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("stat store file: %w", err)
	}

	if info.Size() == 0 {
		_ = f.Close()

		return createNewStore(params, path, opts, logger, lock)
	}

	return openExisting(params, f, info.Size(), opts, logger, lock)
}

// createNewStore creates a new store file via tempfile+rename, seeds it with
// the genesis block, and mmaps it. Mirrors pkg/slotcache's createNewCache.
func createNewStore(params *chainparams.Params, path string, opts Options, logger *zap.Logger, lock *lockfile.Lock) (*Store, error) {
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	randSuffix := make([]byte, 8)
	_, _ = rand.Read(randSuffix)
	tmpPath := fmt.Sprintf("%s.tmp.%x", path, randSuffix)

	recordWidth := RecordWidth(opts.Version)
	size := fileSize(opts.Capacity, recordWidth)

	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)

		return nil, fmt.Errorf("ftruncate: %w", err)
	}

	header := make([]byte, filePrologueBytes)
	copy(header[offMagic:offMagic+magicLen], magicFor(opts.Version))
	writeCapacity(header, opts.Capacity)
	writeCursor(header, indexToCursor(0, recordWidth))

	if _, err := f.WriteAt(header, 0); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)

		return nil, fmt.Errorf("write header: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)

		return nil, fmt.Errorf("fsync: %w", err)
	}

	_ = f.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return nil, fmt.Errorf("rename into place: %w", err)
	}

	f, err = os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open after rename: %w", err)
	}

	store, err := mmapAndWrap(params, f, size, opts.Version, opts.Capacity, recordWidth, path, lock, logger)
	if err != nil {
		return nil, err
	}

	genesis := genesisStoredBlock(params)
	if err := store.Put(genesis); err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("seeding genesis block: %w", err)
	}

	if err := store.SetChainHead(genesis); err != nil {
		_ = store.Close()

		return nil, fmt.Errorf("seeding chain head: %w", err)
	}

	logger.Info("created store", zap.String("path", path), zap.Uint64("capacity", opts.Capacity), zap.String("version", opts.Version.String()))

	return store, nil
}

func genesisStoredBlock(params *chainparams.Params) StoredBlock {
	return StoredBlock{
		Header:    params.Genesis(),
		ChainWork: params.GenesisWork,
		Height:    0,
	}
}

// GenesisStoredBlock returns the synthesized genesis StoredBlock for params:
// height 0, the network's genesis header and starting chain work. Exported
// so callers outside this package (pkg/checkpoint's checkpoint_before
// fallback, per spec.md §4.5) can synthesize the same sentinel value a fresh
// store seeds itself with, without duplicating genesis construction.
func GenesisStoredBlock(params *chainparams.Params) StoredBlock {
	return genesisStoredBlock(params)
}

// openExisting validates an existing file's header and, if compatible,
// mmaps it. It performs the version, magic, and capacity checks spec.md §5
// and §7 require before any record I/O is attempted.
func openExisting(params *chainparams.Params, f *os.File, size int64, opts Options, logger *zap.Logger, lock *lockfile.Lock) (*Store, error) {
	if size < filePrologueBytes {
		_ = f.Close()

		return nil, fmt.Errorf("file size %d smaller than prologue %d: %w", size, filePrologueBytes, ErrCorrupt)
	}

	header := make([]byte, filePrologueBytes)
	if _, err := f.ReadAt(header, 0); err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("reading header: %w", err)
	}

	version, err := detectVersion(header)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	recordWidth := RecordWidth(version)

	slotsBytes := size - filePrologueBytes
	if slotsBytes%int64(recordWidth) != 0 {
		_ = f.Close()

		return nil, fmt.Errorf("slot region %d not a multiple of record width %d: %w", slotsBytes, recordWidth, ErrCorrupt)
	}

	onDiskCapacity := readCapacity(header)
	if uint64(slotsBytes/int64(recordWidth)) != onDiskCapacity {
		_ = f.Close()

		return nil, fmt.Errorf("capacity field %d disagrees with file size: %w", onDiskCapacity, ErrCorrupt)
	}

	if opts.Capacity < onDiskCapacity {
		_ = f.Close()

		return nil, fmt.Errorf("%w: requested %d < on-disk %d", ErrShrinkNotAllowed, opts.Capacity, onDiskCapacity)
	}

	if opts.Capacity > onDiskCapacity && !opts.GrowOK {
		_ = f.Close()

		return nil, fmt.Errorf("%w: %w", ErrCapacityMismatch, &CapacityMismatchError{Requested: opts.Capacity, Actual: onDiskCapacity})
	}

	if opts.Capacity == onDiskCapacity || !opts.GrowOK {
		store, err := mmapAndWrap(params, f, size, version, onDiskCapacity, recordWidth, f.Name(), lock, logger)
		if err != nil {
			return nil, err
		}

		if err := store.validateStructure(); err != nil {
			_ = store.Close()

			return nil, err
		}

		return store, nil
	}

	return growStore(params, f, size, version, onDiskCapacity, opts.Capacity, recordWidth, lock, logger)
}

func detectVersion(header []byte) (FormatVersion, error) {
	magic := string(header[offMagic : offMagic+magicLen])

	switch magic {
	case magicV1:
		return V1, nil
	case magicV2:
		return V2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadMagic, magic)
	}
}

// growStore extends an existing file from oldCapacity to newCapacity slots,
// preserving all existing records and the chain head/cursor, then mmaps the
// result. The slot array grows at the tail; because a record's probe start
// index depends on the capacity, every existing record is then moved to the
// first free slot at or after its start index under newCapacity.
func growStore(params *chainparams.Params, f *os.File, oldSize int64, version FormatVersion, oldCapacity, newCapacity uint64, recordWidth int, lock *lockfile.Lock, logger *zap.Logger) (*Store, error) {
	newSize := fileSize(newCapacity, recordWidth)

	if err := f.Truncate(newSize); err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("growing file: %w", err)
	}

	header := make([]byte, filePrologueBytes)
	if _, err := f.ReadAt(header, 0); err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("re-reading header: %w", err)
	}

	writeCapacity(header, newCapacity)

	if _, err := f.WriteAt(header[offCapacity:offCapacity+8], offCapacity); err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("writing new capacity: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("fsync after grow: %w", err)
	}

	store, err := mmapAndWrap(params, f, newSize, version, newCapacity, recordWidth, f.Name(), lock, logger)
	if err != nil {
		return nil, err
	}

	oldRegion := store.data[filePrologueBytes:slotOffset(oldCapacity, recordWidth)]
	old := bytes.Clone(oldRegion)
	clear(oldRegion)

	for off := 0; off < len(old); off += recordWidth {
		rec := old[off : off+recordWidth]
		if isZeroHash([32]byte(rec[:hashWidth])) {
			continue
		}

		idx := indexFromHash([32]byte(rec[:hashWidth]), newCapacity)
		for !isZeroHash(store.slotHash(store.slotBytes(idx))) {
			idx = (idx + 1) % newCapacity
		}

		copy(store.slotBytes(idx), rec)
	}

	if err := store.validateStructure(); err != nil {
		_ = store.Close()

		return nil, err
	}

	logger.Info("grew store", zap.Uint64("old_capacity", oldCapacity), zap.Uint64("new_capacity", newCapacity))

	return store, nil
}

func mmapAndWrap(params *chainparams.Params, f *os.File, size int64, version FormatVersion, capacity uint64, recordWidth int, path string, lock *lockfile.Lock, logger *zap.Logger) (*Store, error) {
	identity, err := fileIdentityOf(f)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("identifying file: %w", err)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("mmap: %w", err)
	}

	return &Store{
		fd:          f,
		data:        data,
		fileSize:    size,
		path:        path,
		lock:        lock,
		identity:    identity,
		registry:    getOrCreateRegistryEntry(identity),
		version:     version,
		recordWidth: recordWidth,
		bodyWidth:   RecordBodyWidth(version),
		capacity:    capacity,
		logger:      logger,
		params:      params,
	}, nil
}

// validateStructure checks that the cursor and chain-head prologue fields
// are within the bounds implied by capacity — the invariant an Open call
// must re-verify before trusting a file written by another process or an
// earlier, possibly crashed, run.
func (s *Store) validateStructure() error {
	cursor := readCursor(s.data)
	if cursor < filePrologueBytes || (cursor-filePrologueBytes)%uint32(s.recordWidth) != 0 {
		return fmt.Errorf("cursor %d is not a valid slot offset: %w", cursor, ErrCorrupt)
	}

	if cursorToIndex(cursor, s.recordWidth) >= s.capacity {
		return fmt.Errorf("cursor %d out of range for capacity %d: %w", cursor, s.capacity, ErrCorrupt)
	}

	head := readChainHead(s.data)
	if !isZeroHash(head) {
		if _, found := s.probeFind(head); !found {
			return fmt.Errorf("chain head hash not present in ring: %w", ErrCorrupt)
		}
	}

	s.hints = newSlotHint(defaultSlotHintCapacity)

	return nil
}

func (s *Store) slotBytes(idx uint64) []byte {
	off := int64(filePrologueBytes) + int64(idx)*int64(s.recordWidth)

	return s.data[off : off+int64(s.recordWidth)]
}

func (s *Store) slotHash(slot []byte) [32]byte {
	var h [32]byte
	copy(h[:], slot[:hashWidth])

	return h
}

// indexFromHash computes the ring's probe start index: hash[0:4] read as an
// unsigned little-endian integer, reduced mod capacity, per spec.md §4.2.
func indexFromHash(hash [32]byte, capacity uint64) uint64 {
	return uint64(binary.LittleEndian.Uint32(hash[:4])) % capacity
}

// probeFind performs the read-side linear probe: starting at the slot the
// hash maps to, scan forward (wrapping) until the hash is found, an empty
// slot is hit (meaning the hash is absent), or the whole ring has been
// scanned. Must be called with a generation snapshot already taken by the
// caller's retry loop, matching pkg/slotcache's lookupKey shape.
func (s *Store) probeFind(hash [32]byte) (uint64, bool) {
	if s.hints != nil {
		if idx, ok := s.hints.get(hash); ok && idx < s.capacity {
			slot := s.slotBytes(idx)
			if s.slotHash(slot) == hash {
				return idx, true
			}
		}
	}

	start := indexFromHash(hash, s.capacity)

	for i := uint64(0); i < s.capacity; i++ {
		idx := (start + i) % s.capacity
		slot := s.slotBytes(idx)
		h := s.slotHash(slot)

		if isZeroHash(h) {
			return 0, false
		}

		if h == hash {
			if s.hints != nil {
				s.hints.put(hash, idx)
			}

			return idx, true
		}
	}

	return 0, false
}

// Put inserts sb, or overwrites the existing record for the same hash in
// place. When the ring is full and sb's hash is not already present, the
// slot at the current cursor position is evicted (a round-robin sweep over
// physical slot indices approximating FIFO eviction order) and the cursor
// advances; this always frees a slot the subsequent probe will find, since a
// full-ring probe visits every slot.
func (s *Store) Put(sb StoredBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	return s.putLocked(sb)
}

// putLocked performs the insert/update described by Put. The caller must
// hold s.mu.
func (s *Store) putLocked(sb StoredBlock) error {
	body, err := compactSerialize(sb, s.version)
	if err != nil {
		return err
	}

	hash := sb.Hash()

	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()

	beginWrite(s.data)
	defer endWrite(s.data)

	if idx, found := s.probeFind(hash); found {
		slot := s.slotBytes(idx)
		copy(slot[hashWidth:], body)

		return nil
	}

	idx, evicted := s.findInsertSlot(hash)
	if evicted != nil && s.hints != nil {
		s.hints.forget(*evicted)
	}

	slot := s.slotBytes(idx)
	copy(slot[:hashWidth], hash[:])
	copy(slot[hashWidth:], body)

	if s.hints != nil {
		s.hints.put(hash, idx)
	}

	return nil
}

// findInsertSlot returns the slot index to use for a new (non-update)
// insertion of hash, evicting the slot at the cursor if the ring has no
// free slot reachable by probing. Must be called with registry.mu held for
// writing.
func (s *Store) findInsertSlot(hash [32]byte) (uint64, *[32]byte) {
	start := indexFromHash(hash, s.capacity)

	for i := uint64(0); i < s.capacity; i++ {
		idx := (start + i) % s.capacity
		if isZeroHash(s.slotHash(s.slotBytes(idx))) {
			return idx, nil
		}
	}

	cursorIdx := cursorToIndex(readCursor(s.data), s.recordWidth)
	evictedSlot := s.slotBytes(cursorIdx)
	evictedHash := s.slotHash(evictedSlot)

	clear(evictedSlot)

	writeCursor(s.data, indexToCursor((cursorIdx+1)%s.capacity, s.recordWidth))

	for i := uint64(0); i < s.capacity; i++ {
		idx := (start + i) % s.capacity
		if isZeroHash(s.slotHash(s.slotBytes(idx))) {
			return idx, &evictedHash
		}
	}

	// Unreachable: we just freed exactly one slot and a full-ring probe
	// always covers every index.
	return cursorIdx, &evictedHash
}

// Get retrieves the StoredBlock for hash, if present.
func (s *Store) Get(hash [32]byte) (StoredBlock, bool, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return StoredBlock{}, false, ErrClosed
	}

	for attempt := range readMaxRetries {
		readBackoff(attempt)

		s.registry.mu.RLock()

		g1 := readGeneration(s.data)
		if g1%2 == 1 {
			s.registry.mu.RUnlock()

			continue
		}

		idx, found := s.probeFind(hash)

		var (
			sb  StoredBlock
			err error
		)

		if found {
			slot := s.slotBytes(idx)
			sb, err = compactDeserialize(bytes.Clone(slot[hashWidth:]), s.version)
		}

		g2 := readGeneration(s.data)
		s.registry.mu.RUnlock()

		if g1 != g2 {
			continue
		}

		if err != nil {
			return StoredBlock{}, false, err
		}

		return sb, found, nil
	}

	return StoredBlock{}, false, fmt.Errorf("spvstore: read contended after %d retries: %w", readMaxRetries, ErrCorrupt)
}

// Contains reports whether hash is present, without materializing the full
// record.
func (s *Store) Contains(hash [32]byte) (bool, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return false, ErrClosed
	}

	for attempt := range readMaxRetries {
		readBackoff(attempt)

		s.registry.mu.RLock()

		g1 := readGeneration(s.data)
		if g1%2 == 1 {
			s.registry.mu.RUnlock()

			continue
		}

		_, found := s.probeFind(hash)

		g2 := readGeneration(s.data)
		s.registry.mu.RUnlock()

		if g1 != g2 {
			continue
		}

		return found, nil
	}

	return false, fmt.Errorf("spvstore: read contended after %d retries: %w", readMaxRetries, ErrCorrupt)
}

// ChainHead returns the StoredBlock currently recorded as the chain tip.
func (s *Store) ChainHead() (StoredBlock, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return StoredBlock{}, ErrClosed
	}

	for attempt := range readMaxRetries {
		readBackoff(attempt)

		s.registry.mu.RLock()

		g1 := readGeneration(s.data)
		if g1%2 == 1 {
			s.registry.mu.RUnlock()

			continue
		}

		head := readChainHead(s.data)

		g2 := readGeneration(s.data)
		s.registry.mu.RUnlock()

		if g1 != g2 {
			continue
		}

		if isZeroHash(head) {
			return StoredBlock{}, fmt.Errorf("chain head unset: %w", ErrCorrupt)
		}

		sb, found, err := s.Get(head)
		if err != nil {
			return StoredBlock{}, err
		}

		if !found {
			return StoredBlock{}, fmt.Errorf("chain head hash not present in ring: %w", ErrCorrupt)
		}

		return sb, nil
	}

	return StoredBlock{}, fmt.Errorf("spvstore: read contended after %d retries: %w", readMaxRetries, ErrCorrupt)
}

// SetChainHead records sb's hash as the chain tip pointer. It does not imply
// Put: the caller must already have inserted sb. Per spec.md §4.2, pointing
// the chain head at a hash not currently present in the ring is a latent
// invariant violation, not an error SetChainHead itself detects.
func (s *Store) SetChainHead(sb StoredBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	return s.setChainHeadLocked(sb)
}

// setChainHeadLocked writes sb's hash into the prologue's chain-head field.
// The caller must hold s.mu and must already have inserted sb (or be
// certain it is already present).
func (s *Store) setChainHeadLocked(sb StoredBlock) error {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()

	beginWrite(s.data)
	defer endWrite(s.data)

	writeChainHead(s.data, sb.Hash())

	return nil
}

// Clear empties the ring and reseeds it with the genesis block.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.registry.mu.Lock()

	beginWrite(s.data)

	for i := uint64(0); i < s.capacity; i++ {
		clear(s.slotBytes(i))
	}

	writeCursor(s.data, indexToCursor(0, s.recordWidth))
	writeChainHead(s.data, [32]byte{})

	endWrite(s.data)

	if s.hints != nil {
		s.hints.reset()
	}

	s.registry.mu.Unlock()

	if s.params == nil {
		return nil
	}

	genesis := genesisStoredBlock(s.params)
	if err := s.putLocked(genesis); err != nil {
		return err
	}

	return s.setChainHeadLocked(genesis)
}

// Close unmaps and closes the store file, releasing its lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	var errs []error

	if s.data != nil {
		if err := syscall.Munmap(s.data); err != nil {
			errs = append(errs, fmt.Errorf("munmap: %w", err))
		}

		s.data = nil
	}

	if s.fd != nil {
		if err := s.fd.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fd: %w", err))
		}

		s.fd = nil
	}

	if s.lock != nil {
		if err := s.lock.Close(); err != nil {
			errs = append(errs, fmt.Errorf("release lock: %w", err))
		}
	}

	return errors.Join(errs...)
}
