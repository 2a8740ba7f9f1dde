// Package hashfamily implements locality-sensitive hash families used by
// the LSH index. The only concrete variant is sign-random-projection
// (SRP), which approximates angular (cosine) similarity: collision
// probability between two vectors is monotone in their cosine similarity,
// which is what the sparse network's dot-product gating relies on.
//
// © 2025 lshnet authors. MIT License.
package hashfamily

import (
	"fmt"
	"math/rand"

	"github.com/Voskan/lshnet/pkg/lshtypes"
)

// SRP is a sign-random-projection hash family: K independent random
// hyperplanes through the origin of an D-dimensional space. The k-th
// component of a hash is the sign of the inner product between the query
// vector and the k-th hyperplane's normal.
//
// An SRP instance is immutable after construction and safe for concurrent
// use by multiple readers (Hash never mutates the projection matrix).
type SRP struct {
	k, d    int
	planes  []lshtypes.Vector // k rows, each of length d
}

// New constructs an SRP family with k projections over a d-dimensional
// input space, seeded deterministically. Given the same (seed, k, d), Hash
// always produces the same output for the same input.
func New(k, d int, seed uint64) (*SRP, error) {
	if k <= 0 {
		return nil, fmt.Errorf("hashfamily: k (projections) must be > 0, got %d", k)
	}
	if d <= 0 {
		return nil, fmt.Errorf("hashfamily: d (dimension) must be > 0, got %d", d)
	}

	rng := rand.New(rand.NewSource(int64(seed)))
	planes := make([]lshtypes.Vector, k)
	for i := range planes {
		row := make(lshtypes.Vector, d)
		for j := range row {
			row[j] = float32(rng.NormFloat64())
		}
		planes[i] = row
	}
	return &SRP{k: k, d: d, planes: planes}, nil
}

// K returns the number of projections (hash length).
func (s *SRP) K() int { return s.k }

// D returns the expected input dimension.
func (s *SRP) D() int { return s.d }

// Hash computes the length-K signed hash of v. Each component is -1 or +1:
// the sign of the dot product between v and the k-th hyperplane normal,
// with zero treated as +1 (matching the conventional SRP tie-break).
func (s *SRP) Hash(v lshtypes.Vector) (lshtypes.Hash, error) {
	if len(v) != s.d {
		return nil, fmt.Errorf("hashfamily: vector length %d does not match configured dimension %d", len(v), s.d)
	}
	out := make(lshtypes.Hash, s.k)
	for i, plane := range s.planes {
		if plane.Dot(v) >= 0 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
	return out, nil
}
