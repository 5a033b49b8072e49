package plagiarism

import "sort"

// Corpus maps document ids to their full signatures.
// Like Index it carries no lock of its own.
type Corpus struct {
	signatures map[string]Signature
}

func NewCorpus() *Corpus {
	return &Corpus{signatures: make(map[string]Signature)}
}

// Put stores sig under id, replacing any previous signature
func (c *Corpus) Put(id string, sig Signature) {
	c.signatures[id] = sig
}

func (c *Corpus) Get(id string) (Signature, bool) {
	sig, ok := c.signatures[id]
	return sig, ok
}

// Delete removes id and reports whether it was present
func (c *Corpus) Delete(id string) bool {
	if _, ok := c.signatures[id]; !ok {
		return false
	}
	delete(c.signatures, id)
	return true
}

func (c *Corpus) Len() int {
	return len(c.signatures)
}

// IDs returns all stored ids in ascending order
func (c *Corpus) IDs() []string {
	ids := make([]string, 0, len(c.signatures))
	for id := range c.signatures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
