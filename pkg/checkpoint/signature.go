package checkpoint

import (
	"github.com/btcsuite/btcec/v2"
	"github.com/btcsuite/btcec/v2/ecdsa"
)

// Signature is a checkpoint archive's embedded ECDSA signature. Per
// spec.md §9, the archive format does not yet define what the signature
// covers or which key signs it; we preserve the bytes verbatim rather than
// committing to an interpretation, and expose VerifySignatures as the named
// hook a future verifier wires up.
type Signature struct {
	// Raw is the signature exactly as it appeared in the archive (DER
	// encoding, by secp256k1/ECDSA convention).
	Raw []byte
}

// Parse attempts to decode Raw as a DER-encoded secp256k1 ECDSA signature.
// It does not verify anything; a parse failure only means the bytes are not
// well-formed DER, not that the archive is invalid — archives may carry
// signatures over a not-yet-specified message under a not-yet-specified
// key, so callers other than VerifySignatures should not treat a parse
// failure as fatal.
func (s Signature) Parse() (*ecdsa.Signature, error) {
	return ecdsa.ParseDERSignature(s.Raw)
}

// VerifySignatures is the currently-unwired verification hook spec.md §9
// calls for: "preserve the bytes verbatim and expose a hook for future
// verification." No canonical signed message or trusted public key set is
// defined yet, so this always reports unverified rather than guessing at
// semantics the format doesn't specify.
func VerifySignatures(sigs []Signature, trustedKeys []*btcec.PublicKey, digest [32]byte) (bool, error) {
	_ = sigs
	_ = trustedKeys
	_ = digest

	return false, errSignatureVerificationNotImplemented
}
