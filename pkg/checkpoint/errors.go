package checkpoint

import "errors"

var (
	// ErrCheckpointBadMagic indicates the input does not start with a
	// recognized binary or textual archive magic.
	ErrCheckpointBadMagic = errors.New("checkpoint: bad magic")

	// ErrCheckpointTruncated indicates the input ended before a declared
	// record count or record body was fully read.
	ErrCheckpointTruncated = errors.New("checkpoint: truncated archive")

	// ErrCheckpointUnknownRecordLength indicates a record's serialized body
	// length matches neither the V1 nor V2 width.
	ErrCheckpointUnknownRecordLength = errors.New("checkpoint: unknown record length")

	// ErrCheckpointMissingParams indicates NewReader was called without
	// chain parameters, which CheckpointBefore/CheckpointsBefore need to
	// synthesize their genesis fallback.
	ErrCheckpointMissingParams = errors.New("checkpoint: missing chain parameters")

	// ErrCheckpointBadSignatureLength indicates a signature is not exactly
	// the fixed 65-byte ECDSA width a binary archive requires.
	ErrCheckpointBadSignatureLength = errors.New("checkpoint: signature must be 65 bytes")

	// errSignatureVerificationNotImplemented backs the unwired
	// VerifySignatures hook.
	errSignatureVerificationNotImplemented = errors.New("checkpoint: signature verification not implemented")
)
