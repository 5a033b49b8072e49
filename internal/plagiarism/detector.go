package plagiarism

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrInvalidConfig is returned when detector parameters are out of range
var ErrInvalidConfig = errors.New("plagiarism: invalid configuration")

const DefaultThreshold = 0.7

// Config is fixed for the lifetime of a Detector; changing it means building a new one
type Config struct {
	Threshold     float64
	NumPerm       int
	ShingleLength int
	Seed          int64
}

func DefaultConfig() Config {
	return Config{
		Threshold:     DefaultThreshold,
		NumPerm:       DefaultNumPerm,
		ShingleLength: DefaultShingleLength,
		Seed:          1,
	}
}

func (c Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be in (0, 1], got %v", ErrInvalidConfig, c.Threshold)
	}
	if c.NumPerm <= 0 {
		return fmt.Errorf("%w: num_perm must be greater than 0, got %d", ErrInvalidConfig, c.NumPerm)
	}
	if c.ShingleLength < 1 {
		return fmt.Errorf("%w: shingle_length must be at least 1, got %d", ErrInvalidConfig, c.ShingleLength)
	}
	return nil
}

// Detector finds near-duplicate documents within its own corpus.
// Index and corpus are only ever mutated together under mu, so readers never
// observe an id present in one but not the other.
type Detector struct {
	mu         sync.RWMutex
	cfg        Config
	tokenizer  *Tokenizer
	generator  *Generator
	index      *Index
	corpus     *Corpus
	generation uint64
}

// New builds an empty detector
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	generator, err := NewGenerator(cfg.NumPerm, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create signature generator: %w", err)
	}

	index, err := NewIndex(cfg.Threshold, cfg.NumPerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create similarity index: %w", err)
	}

	bands, rows := index.Params()
	log.Debug().
		Float64("threshold", cfg.Threshold).
		Int("numPerm", cfg.NumPerm).
		Int("bands", bands).
		Int("rows", rows).
		Msg("Plagiarism detector initialized")

	return &Detector{
		cfg:       cfg,
		tokenizer: NewTokenizer(cfg.ShingleLength),
		generator: generator,
		index:     index,
		corpus:    NewCorpus(),
	}, nil
}

func (d *Detector) Config() Config {
	return d.cfg
}

// Signature computes the signature of text with this detector's tokenizer and permutations
func (d *Detector) Signature(text string) Signature {
	return d.generator.Generate(d.tokenizer.Tokenize(text))
}

// AddDocument indexes text under id, replacing any previous entry for id.
// Empty text is a no-op. Text too short to form a shingle replaces the
// previous entry with nothing, since empty signatures are never matched.
func (d *Detector) AddDocument(id, text string) error {
	if text == "" {
		return nil
	}

	sig := d.Signature(text)

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.putLocked(id, sig)
}

// putLocked runs the remove-then-insert sequence. Must be called with mu held.
func (d *Detector) putLocked(id string, sig Signature) error {
	if old, ok := d.corpus.Get(id); ok && slices.Equal(old, sig) {
		return nil
	}

	d.index.Remove(id)
	d.corpus.Delete(id)
	d.generation++

	if sig.IsEmpty() {
		log.Debug().Str("documentId", id).Msg("Document has no shingles, not indexed")
		return nil
	}

	if err := d.index.Insert(id, sig); err != nil {
		return fmt.Errorf("failed to index document %s: %w", id, err)
	}
	d.corpus.Put(id, sig)

	log.Debug().Str("documentId", id).Msg("Added document to plagiarism corpus")

	return nil
}

// RemoveDocument drops id from the index and the corpus. Returns false if id was unknown.
func (d *Detector) RemoveDocument(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	removedIndex := d.index.Remove(id)
	removedCorpus := d.corpus.Delete(id)
	if !removedIndex && !removedCorpus {
		return false
	}
	d.generation++

	log.Debug().Str("documentId", id).Msg("Removed document from plagiarism corpus")

	return true
}

// Check compares text against the corpus. excludeID, when non-empty, is never
// reported as a match so an indexed document can be checked against its peers.
func (d *Detector) Check(text, excludeID string) (*Report, error) {
	if text == "" {
		return EmptyReport(), nil
	}

	query := d.Signature(text)
	if query.IsEmpty() {
		return EmptyReport(), nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	candidates, err := d.index.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query similarity index: %w", err)
	}

	return d.scoreLocked(query, candidates, excludeID)
}

type scoredCandidate struct {
	id         string
	similarity float64
}

// scoreLocked verifies candidates against their stored signatures. Must be called with mu held.
func (d *Detector) scoreLocked(query Signature, candidates []string, excludeID string) (*Report, error) {
	kept := make([]scoredCandidate, 0, len(candidates))

	for _, id := range candidates {
		if excludeID != "" && id == excludeID {
			continue
		}

		stored, ok := d.corpus.Get(id)
		if !ok {
			log.Warn().Str("documentId", id).Msg("Indexed document missing from corpus, skipping candidate")
			continue
		}

		similarity, err := query.Similarity(stored)
		if err != nil {
			return nil, fmt.Errorf("failed to compare with %s: %w", id, err)
		}

		if similarity >= d.cfg.Threshold {
			kept = append(kept, scoredCandidate{id: id, similarity: similarity})
		}
	}

	if len(kept) == 0 {
		return EmptyReport(), nil
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].similarity != kept[j].similarity {
			return kept[i].similarity > kept[j].similarity
		}
		return kept[i].id < kept[j].id
	})

	matches := make([]Match, 0, len(kept))
	for _, c := range kept {
		matches = append(matches, Match{DocID: c.id, Similarity: ToPercentage(c.similarity)})
	}

	// The strongest single source drives the headline score.
	percentage := ToPercentage(kept[0].similarity)

	return &Report{
		Percentage:     percentage,
		Matches:        matches,
		SuspicionLevel: SuspicionFor(percentage),
	}, nil
}

// Contains reports whether id is indexed
func (d *Detector) Contains(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.index.Contains(id)
}

// Len returns the number of indexed documents
func (d *Detector) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.corpus.Len()
}

// Generation changes whenever the corpus is mutated. Equal generations
// guarantee identical Check results for identical input.
func (d *Detector) Generation() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.generation
}
