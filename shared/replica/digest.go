package replica

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
)

var digestMode cbor.EncMode

func init() {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	digestMode = mode
}

// Digest hashes the player table in insertion order. The authority publishes
// it with each tick; a mirror that applied the same snapshot computes the
// same value.
func (s *Store) Digest() (uint64, error) {
	data, err := digestMode.Marshal(s.Players())
	if err != nil {
		return 0, fmt.Errorf("encode player table: %w", err)
	}
	return xxhash.Sum64(data), nil
}

// VerifyDigest compares a mirror's table against the digest published in its
// match singleton. Stores that have not received a digest yet verify.
func (s *Store) VerifyDigest() (bool, error) {
	want := s.Match().Digest
	if want == 0 {
		return true, nil
	}
	got, err := s.Digest()
	if err != nil {
		return false, err
	}
	return got == want, nil
}
