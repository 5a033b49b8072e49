package plagiarism

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ErrDuplicateID is returned when inserting an id that is already indexed
var ErrDuplicateID = errors.New("plagiarism: id already indexed")

// integrationStep is the width of the midpoint rule used to score band layouts
const integrationStep = 0.001

// Index is a banded LSH index over MinHash signatures.
// Each band maps a hash of its rows to the ids sharing those rows.
// Index is not safe for concurrent use; Detector serializes access.
type Index struct {
	threshold float64
	numPerm   int
	bands     int
	rows      int
	buckets   []map[uint64]map[string]struct{}
	keys      map[string][]uint64 // id -> band keys, used for removal
}

// NewIndex creates an index whose band layout is tuned for threshold
func NewIndex(threshold float64, numPerm int) (*Index, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be in (0, 1], got %v", ErrInvalidConfig, threshold)
	}
	if numPerm <= 0 {
		return nil, fmt.Errorf("%w: num_perm must be greater than 0, got %d", ErrInvalidConfig, numPerm)
	}

	bands, rows := OptimalParams(threshold, numPerm)
	buckets := make([]map[uint64]map[string]struct{}, bands)
	for i := range buckets {
		buckets[i] = make(map[uint64]map[string]struct{})
	}

	return &Index{
		threshold: threshold,
		numPerm:   numPerm,
		bands:     bands,
		rows:      rows,
		buckets:   buckets,
		keys:      make(map[string][]uint64),
	}, nil
}

// Params returns the number of bands and rows per band
func (idx *Index) Params() (bands, rows int) {
	return idx.bands, idx.rows
}

// Insert adds id under every band of sig. The id must not already be present.
func (idx *Index) Insert(id string, sig Signature) error {
	if sig.Len() != idx.numPerm {
		return fmt.Errorf("%w: index expects %d, got %d", ErrSizeMismatch, idx.numPerm, sig.Len())
	}
	if _, exists := idx.keys[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	keys := idx.bandKeys(sig)
	for band, key := range keys {
		bucket := idx.buckets[band][key]
		if bucket == nil {
			bucket = make(map[string]struct{})
			idx.buckets[band][key] = bucket
		}
		bucket[id] = struct{}{}
	}
	idx.keys[id] = keys

	return nil
}

// Remove drops id from every bucket it occupies. Returns false if id was absent.
func (idx *Index) Remove(id string) bool {
	keys, exists := idx.keys[id]
	if !exists {
		return false
	}

	for band, key := range keys {
		bucket := idx.buckets[band][key]
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(idx.buckets[band], key)
		}
	}
	delete(idx.keys, id)

	return true
}

// Query returns every id sharing at least one band with sig, sorted ascending.
// Results are candidates only; callers verify similarity against stored signatures.
func (idx *Index) Query(sig Signature) ([]string, error) {
	if sig.Len() != idx.numPerm {
		return nil, fmt.Errorf("%w: index expects %d, got %d", ErrSizeMismatch, idx.numPerm, sig.Len())
	}

	seen := make(map[string]struct{})
	for band, key := range idx.bandKeys(sig) {
		for id := range idx.buckets[band][key] {
			seen[id] = struct{}{}
		}
	}

	candidates := make([]string, 0, len(seen))
	for id := range seen {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)

	return candidates, nil
}

// Contains reports whether id is indexed
func (idx *Index) Contains(id string) bool {
	_, exists := idx.keys[id]
	return exists
}

// Len returns the number of indexed ids
func (idx *Index) Len() int {
	return len(idx.keys)
}

// bandKeys hashes each band's rows into a single bucket key
func (idx *Index) bandKeys(sig Signature) []uint64 {
	keys := make([]uint64, idx.bands)
	buf := make([]byte, 8*idx.rows)

	for band := 0; band < idx.bands; band++ {
		start := band * idx.rows
		for row := 0; row < idx.rows; row++ {
			binary.LittleEndian.PutUint64(buf[row*8:], sig[start+row])
		}
		keys[band] = xxhash.Sum64(buf)
	}

	return keys
}

// OptimalParams picks bands*rows == numPerm minimising the equally weighted
// false positive and false negative areas of the S-curve 1-(1-s^r)^b around threshold.
func OptimalParams(threshold float64, numPerm int) (bands, rows int) {
	bestErr := math.Inf(1)
	bands, rows = 1, numPerm

	for b := 1; b <= numPerm; b++ {
		if numPerm%b != 0 {
			continue
		}
		r := numPerm / b

		fp := integrate(func(s float64) float64 { return CollisionProbability(s, b, r) }, 0, threshold)
		fn := integrate(func(s float64) float64 { return 1 - CollisionProbability(s, b, r) }, threshold, 1)

		if e := 0.5*fp + 0.5*fn; e < bestErr {
			bestErr = e
			bands, rows = b, r
		}
	}

	return bands, rows
}

// CollisionProbability is the chance that two signatures with similarity s
// share at least one of b bands of r rows.
func CollisionProbability(s float64, b, r int) float64 {
	return 1 - math.Pow(1-math.Pow(s, float64(r)), float64(b))
}

func integrate(f func(float64) float64, lo, hi float64) float64 {
	area := 0.0
	for x := lo; x < hi; x += integrationStep {
		area += f(x+0.5*integrationStep) * integrationStep
	}
	return area
}
