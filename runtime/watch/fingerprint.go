package watch

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/mityu/bf/runtime/parser"
)

// canonicalInstruction is the intermediate form for deterministic
// hashing. It mirrors parser.Instruction so the digest depends only on
// the tree shape, never on source bytes: two sources that differ in
// comments alone canonicalize identically.
type canonicalInstruction struct {
	Kind int
	Body []canonicalInstruction
}

// Fingerprint returns the BLAKE2b-256 digest of the canonical CBOR
// encoding of an instruction tree. The encoding is deterministic, so
// equal trees always yield equal digests.
func Fingerprint(program []parser.Instruction) ([32]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	data, err := encMode.Marshal(canonicalize(program))
	if err != nil {
		return [32]byte{}, fmt.Errorf("CBOR encoding failed: %w", err)
	}

	return blake2b.Sum256(data), nil
}

func canonicalize(instructions []parser.Instruction) []canonicalInstruction {
	out := make([]canonicalInstruction, len(instructions))
	for i, inst := range instructions {
		out[i] = canonicalInstruction{Kind: int(inst.Kind)}
		if inst.Kind == parser.Repeat {
			out[i].Body = canonicalize(inst.Body)
		}
	}
	return out
}
