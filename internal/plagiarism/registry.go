package plagiarism

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultTenant is used when callers do not scope documents to a tenant
const DefaultTenant = "default"

// Registry keeps one independent Detector per tenant, all sharing one Config
type Registry struct {
	mu        sync.RWMutex
	cfg       Config
	detectors map[string]*Detector
}

func NewRegistry(cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		cfg:       cfg,
		detectors: make(map[string]*Detector),
	}, nil
}

// Get returns the tenant's detector, creating it on first use
func (r *Registry) Get(tenant string) *Detector {
	if tenant == "" {
		tenant = DefaultTenant
	}

	r.mu.RLock()
	detector, exists := r.detectors[tenant]
	r.mu.RUnlock()

	if exists {
		return detector
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if detector, exists := r.detectors[tenant]; exists {
		return detector
	}

	detector, err := New(r.cfg)
	if err != nil {
		// cfg passed Validate in NewRegistry
		panic(fmt.Sprintf("plagiarism: building detector for tenant %s: %v", tenant, err))
	}
	r.detectors[tenant] = detector

	return detector
}

// Tenants lists tenants with a detector, sorted
func (r *Registry) Tenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenants := make([]string, 0, len(r.detectors))
	for tenant := range r.detectors {
		tenants = append(tenants, tenant)
	}
	sort.Strings(tenants)
	return tenants
}

// Size returns the number of indexed documents across all tenants
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, detector := range r.detectors {
		total += detector.Len()
	}
	return total
}
