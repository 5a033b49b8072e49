package api

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

// reportKey holds the full checked text so distinct texts never share an entry.
// generation makes entries from before a corpus mutation unreachable.
type reportKey struct {
	tenant     string
	generation uint64
	text       string
	excludeID  string
}

// ReportCache memoizes check results per tenant and corpus generation
type ReportCache struct {
	cache *lru.Cache[reportKey, *plagiarism.Report]
}

func NewReportCache(size int) (*ReportCache, error) {
	cache, err := lru.New[reportKey, *plagiarism.Report](size)
	if err != nil {
		return nil, err
	}
	return &ReportCache{cache: cache}, nil
}

func (rc *ReportCache) Get(tenant string, generation uint64, text, excludeID string) (*plagiarism.Report, bool) {
	return rc.cache.Get(reportKey{tenant: tenant, generation: generation, text: text, excludeID: excludeID})
}

func (rc *ReportCache) Add(tenant string, generation uint64, text, excludeID string, report *plagiarism.Report) {
	rc.cache.Add(reportKey{tenant: tenant, generation: generation, text: text, excludeID: excludeID}, report)
}

func (rc *ReportCache) Len() int {
	return rc.cache.Len()
}
