package plagiarism

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultNumPerm is the default signature length
	DefaultNumPerm = 128

	// EmptyValue fills every slot of the signature of an empty shingle set.
	// Permuted hashes are reduced modulo mersennePrime and never reach it.
	EmptyValue = math.MaxUint64

	mersennePrime = (1 << 61) - 1
)

var (
	// ErrSizeMismatch is returned when two signatures of different length are compared
	ErrSizeMismatch = errors.New("plagiarism: signature sizes do not match")
)

// Signature is a MinHash signature: one minimum per hash permutation
type Signature []uint64

// Len returns the number of permutation slots
func (s Signature) Len() int {
	return len(s)
}

// IsEmpty reports whether the signature was built from an empty shingle set
func (s Signature) IsEmpty() bool {
	for _, v := range s {
		if v != EmptyValue {
			return false
		}
	}
	return true
}

// Similarity estimates the Jaccard similarity of the underlying shingle sets as
// the fraction of slots on which both signatures agree. Signatures of empty
// sets carry no signal and score 0 against everything, including each other.
func (s Signature) Similarity(other Signature) (float64, error) {
	if len(s) != len(other) {
		return 0, fmt.Errorf("%w: %d != %d", ErrSizeMismatch, len(s), len(other))
	}
	if s.IsEmpty() || other.IsEmpty() {
		return 0, nil
	}

	matches := 0
	for i := range s {
		if s[i] == other[i] {
			matches++
		}
	}

	return float64(matches) / float64(len(s)), nil
}

// Generator maps shingle sets to signatures using a fixed permutation family.
// Signatures are only comparable when produced by generators sharing numPerm and seed.
type Generator struct {
	numPerm int
	a       []uint64
	b       []uint64
}

// NewGenerator draws numPerm universal-hash permutations (a*x + b) mod (2^61 - 1)
// from a PCG source seeded with seed.
func NewGenerator(numPerm int, seed int64) (*Generator, error) {
	if numPerm <= 0 {
		return nil, fmt.Errorf("%w: num_perm must be greater than 0, got %d", ErrInvalidConfig, numPerm)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	a := make([]uint64, numPerm)
	b := make([]uint64, numPerm)
	for i := 0; i < numPerm; i++ {
		a[i] = rng.Uint64N(mersennePrime-1) + 1
		b[i] = rng.Uint64N(mersennePrime)
	}

	return &Generator{
		numPerm: numPerm,
		a:       a,
		b:       b,
	}, nil
}

// NumPerm returns the signature length this generator produces
func (g *Generator) NumPerm() int {
	return g.numPerm
}

// Generate computes the signature of a shingle set
func (g *Generator) Generate(shingles ShingleSet) Signature {
	sig := make(Signature, g.numPerm)
	for i := range sig {
		sig[i] = EmptyValue
	}

	for shingle := range shingles {
		h := xxhash.Sum64String(shingle) % mersennePrime
		for i := range sig {
			if v := g.permute(i, h); v < sig[i] {
				sig[i] = v
			}
		}
	}

	return sig
}

func (g *Generator) permute(i int, h uint64) uint64 {
	hi, lo := bits.Mul64(g.a[i], h)
	return (bits.Rem64(hi, lo, mersennePrime) + g.b[i]) % mersennePrime
}
