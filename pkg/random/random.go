package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand"
)

// Source yields uniform random integers. Draws take a Source explicitly so
// production code can use a cryptographically secure generator while tests
// substitute a seeded one.
type Source interface {
	// Intn returns a uniform random int in [0, n). n must be > 0.
	Intn(n int) int
}

type secureSource struct{}

// NewSecureSource returns a Source backed by crypto/rand.
func NewSecureSource() Source {
	return secureSource{}
}

func (secureSource) Intn(n int) int {
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		// Fall back to a freshly seeded PRNG rather than panicking a draw.
		var seed [8]byte
		binary.LittleEndian.PutUint64(seed[:], uint64(mrand.Int63()))
		return mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(seed[:])))).Intn(n)
	}
	return int(v.Int64())
}

type seededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source for tests.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *seededSource) Intn(n int) int {
	return s.rng.Intn(n)
}

// Shuffle permutes items in place with a Fisher-Yates walk over src.
func Shuffle[T any](items []T, src Source) {
	for i := len(items) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
