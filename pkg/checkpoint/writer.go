package checkpoint

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bitbandi/ltcspv/pkg/spvstore"
)

// EncodeBinary writes a binary-format checkpoint archive for blocks
// (ascending height/time) with the given signatures attached verbatim.
// Checkpoint bodies are encoded at V2 width; a future V1-only archive
// would have no use case (V1 only exists to read legacy ring files).
func EncodeBinary(w io.Writer, sigs [][]byte, blocks []spvstore.StoredBlock) error {
	if _, err := w.Write([]byte(binaryMagic)); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}

	if err := writeUint32(w, uint32(len(sigs))); err != nil {
		return err
	}

	for i, sig := range sigs {
		if len(sig) != signatureWidth {
			return fmt.Errorf("%w: signature %d is %d bytes", ErrCheckpointBadSignatureLength, i, len(sig))
		}

		if _, err := w.Write(sig); err != nil {
			return fmt.Errorf("writing signature %d: %w", i, err)
		}
	}

	if err := writeUint32(w, uint32(len(blocks))); err != nil {
		return err
	}

	for i, sb := range blocks {
		body, err := spvstore.EncodeCheckpointBody(sb, spvstore.V2)
		if err != nil {
			return fmt.Errorf("encoding checkpoint %d: %w", i, err)
		}

		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("writing checkpoint %d: %w", i, err)
		}
	}

	return nil
}

// EncodeTextual writes a textual-format checkpoint archive: one
// decimal/base64 token per line, base64 using RFC 4648 §4 no-padding
// encoding, the same wire choice the teacher's config loader avoids needing
// but that textual Bitcoin-family checkpoint files conventionally use for
// binary payloads embedded in text.
func EncodeTextual(w io.Writer, sigs [][]byte, blocks []spvstore.StoredBlock) error {
	bw := newLineWriter(w)

	bw.line(textualMagic)
	bw.line(fmt.Sprintf("%d", len(sigs)))

	for _, sig := range sigs {
		bw.line(base64.RawStdEncoding.EncodeToString(sig))
	}

	bw.line(fmt.Sprintf("%d", len(blocks)))

	for _, sb := range blocks {
		body, err := spvstore.EncodeCheckpointBody(sb, spvstore.V2)
		if err != nil {
			return fmt.Errorf("encoding checkpoint: %w", err)
		}

		bw.line(base64.RawStdEncoding.EncodeToString(body))
	}

	return bw.err
}

type lineWriter struct {
	w   io.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: w}
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}

	_, lw.err = fmt.Fprintf(lw.w, "%s\n", s)
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)

	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("writing uint32: %w", err)
	}

	return nil
}
