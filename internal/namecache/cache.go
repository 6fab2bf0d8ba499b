// Package namecache resolves opaque catalog identifiers (term and product
// ids, country and state codes) to display names, with a time-boxed cache
// per entity kind. Provider failures degrade to empty lists or id-based
// fallback labels; no public operation returns an error.
package namecache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"upsell-widget-engine/internal/observability"
)

// Kind identifies one cached entity family.
type Kind string

const (
	KindCategory  Kind = "category"
	KindTag       Kind = "tag"
	KindBrand     Kind = "brand"
	KindAttribute Kind = "attribute"
	KindProduct   Kind = "product"
	KindCountry   Kind = "country"
	KindState     Kind = "state"
)

var kindLabels = map[Kind]string{
	KindCategory:  "Category",
	KindTag:       "Tag",
	KindBrand:     "Brand",
	KindAttribute: "Attribute",
	KindProduct:   "Product",
	KindCountry:   "Country",
	KindState:     "State",
}

// Entry is one resolvable item. ID holds the term/product id or, for
// countries and states, the code ("US", "US:NY").
type Entry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug,omitempty"`
	Count   int    `json:"count,omitempty"`
	Country string `json:"country,omitempty"` // state entries only
}

// Provider is the external catalog data source.
type Provider interface {
	ListCategories(ctx context.Context) ([]Entry, error)
	ListTags(ctx context.Context) ([]Entry, error)
	ListBrands(ctx context.Context) ([]Entry, error)
	ListAttributes(ctx context.Context) ([]Entry, error)
	ListCountries(ctx context.Context) ([]Entry, error)
	ListStates(ctx context.Context, countryCodes []string) ([]Entry, error)
	ProductsByIDs(ctx context.Context, ids []string) ([]Entry, error)
}

// Stat is per-kind cache observability data.
type Stat struct {
	Count int  `json:"count"`
	Valid bool `json:"valid"`
}

// DefaultTTL bounds staleness of every kind's cached set.
const DefaultTTL = 5 * time.Minute

type kindCache struct {
	byID   map[string]Entry
	list   []Entry // provider order
	expiry time.Time
}

// Cache is the process-wide name-resolution cache. The clock is injected so
// expiry is testable.
type Cache struct {
	provider Provider
	clock    clock.Clock
	ttl      time.Duration

	mu    sync.Mutex
	terms map[Kind]*kindCache // category, tag, brand, attribute, country

	products map[string]Entry // per-item, never wholesale-replaced

	states     *kindCache
	stateScope string // sorted country codes the state cache was built for
}

type Option func(*Cache)

// WithTTL overrides the per-kind cache duration.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) { c.ttl = d }
}

func New(p Provider, clk clock.Clock, opts ...Option) *Cache {
	if clk == nil {
		clk = clock.New()
	}
	c := &Cache{
		provider: p,
		clock:    clk,
		ttl:      DefaultTTL,
		terms:    map[Kind]*kindCache{},
		products: map[string]Entry{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) valid(kc *kindCache) bool {
	return kc != nil && len(kc.byID) > 0 && c.clock.Now().Before(kc.expiry)
}

// fetchKind returns the cached set for a bulk kind, refreshing wholesale on
// expiry. A provider failure leaves the cache untouched and returns nil.
func (c *Cache) fetchKind(ctx context.Context, kind Kind, list func(context.Context) ([]Entry, error)) []Entry {
	c.mu.Lock()
	if kc := c.terms[kind]; c.valid(kc) {
		out := append([]Entry(nil), kc.list...)
		c.mu.Unlock()
		observability.NameCacheHits.WithLabelValues(string(kind)).Inc()
		return out
	}
	c.mu.Unlock()

	observability.NameCacheMisses.WithLabelValues(string(kind)).Inc()
	entries, err := list(ctx)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("fetch names")
		return nil
	}

	kc := &kindCache{
		byID:   make(map[string]Entry, len(entries)),
		list:   entries,
		expiry: c.clock.Now().Add(c.ttl),
	}
	for _, e := range entries {
		kc.byID[e.ID] = e
	}
	c.mu.Lock()
	c.terms[kind] = kc
	c.mu.Unlock()
	return append([]Entry(nil), entries...)
}

func (c *Cache) FetchCategories(ctx context.Context) []Entry {
	return c.fetchKind(ctx, KindCategory, c.provider.ListCategories)
}

func (c *Cache) FetchTags(ctx context.Context) []Entry {
	return c.fetchKind(ctx, KindTag, c.provider.ListTags)
}

func (c *Cache) FetchBrands(ctx context.Context) []Entry {
	return c.fetchKind(ctx, KindBrand, c.provider.ListBrands)
}

func (c *Cache) FetchAttributes(ctx context.Context) []Entry {
	return c.fetchKind(ctx, KindAttribute, c.provider.ListAttributes)
}

func (c *Cache) FetchCountries(ctx context.Context) []Entry {
	return c.fetchKind(ctx, KindCountry, c.provider.ListCountries)
}

// FetchStates returns states scoped to the given countries. The cache holds
// one scope at a time; asking for a different country set refetches.
func (c *Cache) FetchStates(ctx context.Context, countryCodes []string) []Entry {
	scope := stateScopeKey(countryCodes)

	c.mu.Lock()
	if c.stateScope == scope && c.valid(c.states) {
		out := append([]Entry(nil), c.states.list...)
		c.mu.Unlock()
		observability.NameCacheHits.WithLabelValues(string(KindState)).Inc()
		return out
	}
	c.mu.Unlock()

	observability.NameCacheMisses.WithLabelValues(string(KindState)).Inc()
	entries, err := c.provider.ListStates(ctx, countryCodes)
	if err != nil {
		log.Error().Err(err).Strs("countries", countryCodes).Msg("fetch states")
		return nil
	}

	kc := &kindCache{
		byID:   make(map[string]Entry, len(entries)),
		list:   entries,
		expiry: c.clock.Now().Add(c.ttl),
	}
	for _, e := range entries {
		kc.byID[e.ID] = e
	}
	c.mu.Lock()
	c.states = kc
	c.stateScope = scope
	c.mu.Unlock()
	return append([]Entry(nil), entries...)
}

func stateScopeKey(countryCodes []string) string {
	cs := append([]string(nil), countryCodes...)
	sort.Strings(cs)
	return strings.Join(cs, ",")
}

// FetchProductsByIDs resolves products by id. Products cache per item: only
// uncached ids hit the provider, cached entries come back first, then the
// freshly fetched ones in provider order.
func (c *Cache) FetchProductsByIDs(ctx context.Context, ids []string) []Entry {
	if len(ids) == 0 {
		return nil
	}

	var cached []Entry
	var missing []string
	seen := map[string]bool{}
	c.mu.Lock()
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if e, ok := c.products[id]; ok {
			cached = append(cached, e)
		} else {
			missing = append(missing, id)
		}
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		observability.NameCacheHits.WithLabelValues(string(KindProduct)).Inc()
		return cached
	}

	observability.NameCacheMisses.WithLabelValues(string(KindProduct)).Inc()
	fetched, err := c.provider.ProductsByIDs(ctx, missing)
	if err != nil {
		log.Error().Err(err).Int("ids", len(missing)).Msg("fetch products")
		return cached
	}

	c.mu.Lock()
	for _, e := range fetched {
		c.products[e.ID] = e
	}
	c.mu.Unlock()
	return append(cached, fetched...)
}

// resolve maps ids to names against an already-fetched set: one output per
// input id, order and duplicates preserved, "{Kind} {id}" when unknown.
func resolve(kind Kind, ids []string, byID map[string]Entry) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e.Name)
			continue
		}
		out = append(out, fmt.Sprintf("%s %s", kindLabels[kind], id))
	}
	return out
}

func (c *Cache) names(ctx context.Context, kind Kind, ids []string, fetch func(context.Context) []Entry) []string {
	if len(ids) == 0 {
		return nil
	}
	entries := fetch(ctx)
	byID := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return resolve(kind, ids, byID)
}

func (c *Cache) CategoryNames(ctx context.Context, ids []string) []string {
	return c.names(ctx, KindCategory, ids, c.FetchCategories)
}

func (c *Cache) TagNames(ctx context.Context, ids []string) []string {
	return c.names(ctx, KindTag, ids, c.FetchTags)
}

func (c *Cache) BrandNames(ctx context.Context, ids []string) []string {
	return c.names(ctx, KindBrand, ids, c.FetchBrands)
}

func (c *Cache) AttributeNames(ctx context.Context, ids []string) []string {
	return c.names(ctx, KindAttribute, ids, c.FetchAttributes)
}

func (c *Cache) CountryNames(ctx context.Context, codes []string) []string {
	return c.names(ctx, KindCountry, codes, c.FetchCountries)
}

// StateNames resolves composite "{country}:{state}" codes, scoped to the
// selected countries.
func (c *Cache) StateNames(ctx context.Context, codes, countryCodes []string) []string {
	return c.names(ctx, KindState, codes, func(ctx context.Context) []Entry {
		return c.FetchStates(ctx, countryCodes)
	})
}

func (c *Cache) ProductNames(ctx context.Context, ids []string) []string {
	return c.names(ctx, KindProduct, ids, func(ctx context.Context) []Entry {
		return c.FetchProductsByIDs(ctx, ids)
	})
}

// ClearAll empties every kind's cache and unsets every expiry.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terms = map[Kind]*kindCache{}
	c.products = map[string]Entry{}
	c.states = nil
	c.stateScope = ""
}

// Stats reports per-kind entry counts and validity.
func (c *Cache) Stats() map[Kind]Stat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[Kind]Stat{}
	for _, kind := range []Kind{KindCategory, KindTag, KindBrand, KindAttribute, KindCountry} {
		kc := c.terms[kind]
		s := Stat{}
		if kc != nil {
			s.Count = len(kc.byID)
			s.Valid = c.valid(kc)
		}
		out[kind] = s
	}
	out[KindProduct] = Stat{Count: len(c.products), Valid: len(c.products) > 0}
	st := Stat{}
	if c.states != nil {
		st.Count = len(c.states.byID)
		st.Valid = c.valid(c.states)
	}
	out[KindState] = st
	return out
}
