package registry

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/repository"
)

const catalogKey = "alert_type_catalog"

// Registry resolves alert type codes against one immutable snapshot of the
// catalog. A snapshot is scoped to a unit of work; it needs no locking and
// makes no storage calls after construction.
type Registry struct {
	byCode map[string]*model.AlertType
}

// NewFromTypes builds a snapshot from an already-loaded catalog.
func NewFromTypes(types []*model.AlertType) *Registry {
	byCode := make(map[string]*model.AlertType, len(types))
	for _, t := range types {
		byCode[t.Code] = t
	}
	return &Registry{byCode: byCode}
}

// IsEnabled returns the global enable flag for code. Unknown codes are
// reported disabled (fail-closed).
func (r *Registry) IsEnabled(code string) bool {
	t, ok := r.byCode[code]
	if !ok {
		return false
	}
	return t.Enabled
}

// ResolveID returns the type's identifier for code, or false if the code is
// not in the catalog.
func (r *Registry) ResolveID(code string) (int64, bool) {
	t, ok := r.byCode[code]
	if !ok {
		return 0, false
	}
	return t.ID, true
}

// Len returns the number of catalog entries in the snapshot.
func (r *Registry) Len() int {
	return len(r.byCode)
}

// Loader builds Registry snapshots. The catalog is read-mostly, so snapshots
// are held in a TTL cache; the TTL bounds how long an administrative change
// elsewhere can go unseen, and Invalidate removes the window entirely for
// writes made through this process.
type Loader struct {
	repo  repository.AlertTypeRepository
	cache *gocache.Cache
	ttl   time.Duration
}

// DefaultTTL bounds catalog staleness in long-lived processes.
const DefaultTTL = 30 * time.Second

func NewLoader(repo repository.AlertTypeRepository, ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Loader{
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Load returns the current catalog snapshot, reading storage only on a cache
// miss. A storage failure propagates; it must not degrade into an empty
// catalog, which would silently report every type disabled.
func (l *Loader) Load(ctx context.Context) (*Registry, error) {
	if cached, ok := l.cache.Get(catalogKey); ok {
		return cached.(*Registry), nil
	}

	types, err := l.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert type catalog: %w", err)
	}

	reg := NewFromTypes(types)
	l.cache.Set(catalogKey, reg, l.ttl)
	return reg, nil
}

// Invalidate drops the cached snapshot so the next Load sees fresh state.
// Called after administrative writes to the catalog.
func (l *Loader) Invalidate() {
	l.cache.Delete(catalogKey)
}
