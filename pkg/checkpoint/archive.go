// Package checkpoint reads and writes checkpoint archives: signed,
// integrity-checked snapshots of historical block headers used to seed a
// fresh Mapped Ring Store without replaying the whole chain from genesis.
package checkpoint

import (
	"bufio"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/bitbandi/ltcspv/pkg/chainparams"
	"github.com/bitbandi/ltcspv/pkg/spvstore"
)

// binaryMagic leads a binary-format archive, ASCII with no terminator.
// textualMagic is the first line of a textual-format archive. Both are
// literal, bit-exact strings per spec.md §4.5/§6: archives this package
// writes must be byte-for-byte reproducible, so these cannot be invented
// values.
const (
	binaryMagic  = "CHECKPOINTS 1"
	textualMagic = "TXT CHECKPOINTS 1"

	// textualPrefix is the portion of textualMagic NewReader sniffs on: no
	// binary archive starts with it, since binaryMagic starts with "CHEC".
	textualPrefix = "TXT "

	// signatureWidth is the fixed on-disk width of one ECDSA signature in
	// a binary archive (spec.md §4.5: no per-signature length prefix).
	signatureWidth = 65
)

const (
	recordWidthV1 = 96  // spvstore.RecordBodyWidth(spvstore.V1)
	recordWidthV2 = 116 // spvstore.RecordBodyWidth(spvstore.V2); see DESIGN.md for the 112-vs-116 note
)

// Archive is a fully parsed, in-memory checkpoint archive: an ordered
// (ascending height/time) list of historical blocks plus the signatures
// that accompanied them, verbatim.
type Archive struct {
	Signatures  []Signature
	Checkpoints []spvstore.StoredBlock

	version spvstore.FormatVersion
	params  *chainparams.Params
}

// NewReader reads and parses a complete checkpoint archive from r, sniffing
// whether it is binary or textual. params supplies the network genesis used
// to synthesize a fallback block when CheckpointBefore/CheckpointsBefore
// finds no qualifying entry (spec.md §4.5).
func NewReader(r io.Reader, params *chainparams.Params) (*Archive, error) {
	if params == nil {
		return nil, ErrCheckpointMissingParams
	}

	br := bufio.NewReader(r)

	if _, err := br.Peek(1); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty input", ErrCheckpointBadMagic)
		}

		return nil, fmt.Errorf("peeking magic: %w", err)
	}

	prefix, _ := br.Peek(len(textualPrefix))
	if string(prefix) == textualPrefix {
		return parseTextual(br, params)
	}

	return parseBinary(br, params)
}

func parseBinary(r io.Reader, params *chainparams.Params) (*Archive, error) {
	magic := make([]byte, len(binaryMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckpointTruncated, err)
	}

	if string(magic) != binaryMagic {
		return nil, fmt.Errorf("%w: %q", ErrCheckpointBadMagic, magic)
	}

	numSigs, err := readUint32(r)
	if err != nil {
		return nil, err
	}

	sigs := make([]Signature, 0, numSigs)

	for i := uint32(0); i < numSigs; i++ {
		raw := make([]byte, signatureWidth)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("%w: reading signature %d: %w", ErrCheckpointTruncated, i, err)
		}

		sigs = append(sigs, Signature{Raw: raw})
	}

	numCheckpoints, err := readUint32(r)
	if err != nil {
		return nil, err
	}

	if numCheckpoints == 0 {
		return &Archive{Signatures: sigs, params: params}, nil
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint records: %w", err)
	}

	version, width, err := detectRecordWidth(len(body), int(numCheckpoints))
	if err != nil {
		return nil, err
	}

	checkpoints := make([]spvstore.StoredBlock, 0, numCheckpoints)

	for i := uint32(0); i < numCheckpoints; i++ {
		rec := body[int(i)*width : int(i+1)*width]

		sb, err := spvstore.DecodeCheckpointBody(rec, version)
		if err != nil {
			return nil, fmt.Errorf("decoding checkpoint %d: %w", i, err)
		}

		checkpoints = append(checkpoints, sb)
	}

	return &Archive{Signatures: sigs, Checkpoints: checkpoints, version: version, params: params}, nil
}

func parseTextual(r io.Reader, params *chainparams.Params) (*Archive, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: empty input", ErrCheckpointBadMagic)
	}

	if scanner.Text() != textualMagic {
		return nil, fmt.Errorf("%w: %q", ErrCheckpointBadMagic, scanner.Text())
	}

	numSigs, err := scanTextUint(scanner, "signature count")
	if err != nil {
		return nil, err
	}

	sigs := make([]Signature, 0, numSigs)

	for i := 0; i < numSigs; i++ {
		raw, err := scanTextBase64(scanner, fmt.Sprintf("signature %d", i))
		if err != nil {
			return nil, err
		}

		sigs = append(sigs, Signature{Raw: raw})
	}

	numCheckpoints, err := scanTextUint(scanner, "checkpoint count")
	if err != nil {
		return nil, err
	}

	checkpoints := make([]spvstore.StoredBlock, 0, numCheckpoints)

	var version spvstore.FormatVersion

	for i := 0; i < numCheckpoints; i++ {
		raw, err := scanTextBase64(scanner, fmt.Sprintf("checkpoint %d", i))
		if err != nil {
			return nil, err
		}

		v, _, err := detectRecordWidth(len(raw), 1)
		if err != nil {
			return nil, fmt.Errorf("decoding checkpoint %d: %w", i, err)
		}

		version = v

		sb, err := spvstore.DecodeCheckpointBody(raw, v)
		if err != nil {
			return nil, fmt.Errorf("decoding checkpoint %d: %w", i, err)
		}

		checkpoints = append(checkpoints, sb)
	}

	return &Archive{Signatures: sigs, Checkpoints: checkpoints, version: version, params: params}, nil
}

func detectRecordWidth(totalBytes, count int) (spvstore.FormatVersion, int, error) {
	if count == 0 || totalBytes%count != 0 {
		return 0, 0, fmt.Errorf("%w: %d bytes across %d records", ErrCheckpointUnknownRecordLength, totalBytes, count)
	}

	width := totalBytes / count

	switch width {
	case recordWidthV1:
		return spvstore.V1, width, nil
	case recordWidthV2:
		return spvstore.V2, width, nil
	default:
		return 0, 0, fmt.Errorf("%w: record width %d", ErrCheckpointUnknownRecordLength, width)
	}
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCheckpointTruncated, err)
	}

	return binary.BigEndian.Uint32(buf[:]), nil
}

func scanTextUint(scanner *bufio.Scanner, what string) (int, error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("%w: expected %s", ErrCheckpointTruncated, what)
	}

	n, err := strconv.Atoi(scanner.Text())
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", what, err)
	}

	if n < 0 {
		return 0, fmt.Errorf("%s must be >= 0, got %d", what, n)
	}

	return n, nil
}

func scanTextBase64(scanner *bufio.Scanner, what string) ([]byte, error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: expected %s", ErrCheckpointTruncated, what)
	}

	raw, err := base64.RawStdEncoding.DecodeString(scanner.Text())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", what, err)
	}

	return raw, nil
}

// DataHash returns the SHA-256 digest over the checkpoint count and the
// canonical (big-endian work/height, verbatim 80-byte header) encoding of
// every checkpoint, excluding signatures. Binary and textual archives
// encoding the same logical checkpoint sequence always hash equal, since
// both readers funnel into this same canonical form rather than hashing
// their respective raw wire bytes.
func (a *Archive) DataHash() [32]byte {
	h := sha256.New()

	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(a.Checkpoints)))
	h.Write(countBuf[:])

	version := a.version
	if version == 0 {
		version = spvstore.V2
	}

	for _, cp := range a.Checkpoints {
		body, err := spvstore.EncodeCheckpointBody(cp, version)
		if err != nil {
			// Archives are only ever populated by NewReader (already
			// validated) or by the writer's own inputs; an encode failure
			// here means the caller built checkpoints by hand with bad
			// chain work, which is a programming error, not an I/O one.
			panic(fmt.Sprintf("checkpoint: encoding checkpoint for digest: %v", err))
		}

		h.Write(body)
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))

	return digest
}

// CheckpointBefore returns the greatest-timestamp checkpoint with header
// timestamp <= t, or a synthesized genesis block if no entry qualifies
// (spec.md §4.5).
func (a *Archive) CheckpointBefore(t time.Time) spvstore.StoredBlock {
	idx := a.indexBefore(t)
	if idx < 0 {
		return spvstore.GenesisStoredBlock(a.params)
	}

	return a.Checkpoints[idx]
}

// CheckpointsBefore returns the latest checkpoint before t together with
// its height-minus-one companion, when present. Litecoin (like Bitcoin)
// computes a difficulty retarget from the block *before* the window
// boundary, so wallets resuming from a checkpoint need both blocks to
// validate the next retarget without rescanning (spec.md §9).
func (a *Archive) CheckpointsBefore(t time.Time) []spvstore.StoredBlock {
	idx := a.indexBefore(t)
	if idx < 0 {
		return []spvstore.StoredBlock{spvstore.GenesisStoredBlock(a.params)}
	}

	primary := a.Checkpoints[idx]
	result := []spvstore.StoredBlock{primary}

	companionIdx := sort.Search(len(a.Checkpoints), func(i int) bool {
		return a.Checkpoints[i].Height >= primary.Height-1
	})

	if companionIdx < len(a.Checkpoints) && a.Checkpoints[companionIdx].Height == primary.Height-1 {
		result = append([]spvstore.StoredBlock{a.Checkpoints[companionIdx]}, result...)
	}

	return result
}

// indexBefore returns the index of the last checkpoint with
// Header.Timestamp <= t, or -1 if none qualifies. Checkpoints are assumed
// sorted ascending by timestamp, matching chain order.
func (a *Archive) indexBefore(t time.Time) int {
	target := uint32(t.Unix())

	idx := sort.Search(len(a.Checkpoints), func(i int) bool {
		return a.Checkpoints[i].Header.Timestamp > target
	})

	return idx - 1
}
