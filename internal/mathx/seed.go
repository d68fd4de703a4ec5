// Package mathx derives deterministic per-entity random sources.
package mathx

import (
	"encoding/binary"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"
)

// Seed mixes the world seed with a stream id (usually an entity id) into a
// PCG seed pair. Equal inputs give equal streams across runs.
func Seed(world, stream uint64) (uint64, uint64) {
	var in [16]byte
	binary.LittleEndian.PutUint64(in[:8], world)
	binary.LittleEndian.PutUint64(in[8:], stream)
	sum := blake2b.Sum256(in[:])
	return binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:16])
}

// NewRand returns a generator private to one stream.
func NewRand(world, stream uint64) *rand.Rand {
	hi, lo := Seed(world, stream)
	return rand.New(rand.NewPCG(hi, lo))
}
