// Package engine selects and ranks the products a campaign displays:
// inclusion/exclusion filters narrow the catalog, amplifiers boost scores,
// visibility and personalization gates decide whether the campaign shows at
// all. Selection runs against an immutable catalog snapshot swapped in
// whole on refresh.
package engine

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"upsell-widget-engine/internal/cache"
	"upsell-widget-engine/internal/campaign"
)

// CatalogSource loads the product catalog for snapshot builds.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]Product, error)
}

// Inverted indexes for fast candidate narrowing.
type indexes struct {
	Products []Product // backing array; indexes reference this

	ByCategory  map[string][]int
	ByTag       map[string][]int
	ByBrand     map[string][]int
	ByAttribute map[string][]int
}

type snapshot struct{ idx indexes }

// Engine exposes read-only, lock-free selection over the latest snapshot.
type Engine struct {
	snap        cache.Snapshot[snapshot]
	formatPrice func(float64) string
}

const defaultLimit = 4

// New builds an Engine. formatPrice turns a price into widget display text;
// nil falls back to a plain two-decimal format.
func New(formatPrice func(float64) string) *Engine {
	if formatPrice == nil {
		formatPrice = func(v float64) string { return fmt.Sprintf("$%.2f", v) }
	}
	return &Engine{formatPrice: formatPrice}
}

// BuildSnapshot loads the catalog and rebuilds the inverted indexes.
func (e *Engine) BuildSnapshot(ctx context.Context, src CatalogSource) error {
	products, err := src.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	e.snap.Store(snapshot{idx: buildIndexes(products)})
	return nil
}

func buildIndexes(products []Product) indexes {
	ix := indexes{
		Products:    products,
		ByCategory:  map[string][]int{},
		ByTag:       map[string][]int{},
		ByBrand:     map[string][]int{},
		ByAttribute: map[string][]int{},
	}
	for i, p := range products {
		for _, id := range p.Categories {
			ix.ByCategory[id] = append(ix.ByCategory[id], i)
		}
		for _, id := range p.Tags {
			ix.ByTag[id] = append(ix.ByTag[id], i)
		}
		for _, id := range p.Brands {
			ix.ByBrand[id] = append(ix.ByBrand[id], i)
		}
		for _, id := range p.Attributes {
			ix.ByAttribute[id] = append(ix.ByAttribute[id], i)
		}
	}
	return ix
}

type scored struct {
	p     Product
	score float64
}

// Recommend returns the ranked recommendation list for a campaign and
// visit, empty when a visibility or personalization gate rejects the visit.
func (e *Engine) Recommend(_ context.Context, c *campaign.Campaign, visit Visit) []campaign.Recommendation {
	if c == nil {
		return nil
	}
	if !visible(c.Visibility, visit) {
		return nil
	}
	if !personalized(c.Personalization, visit) {
		return nil
	}

	s, ok := e.snap.Load()
	if !ok {
		return nil
	}
	ix := s.idx

	cand := candidates(ix, c.Filters)

	var out []scored
	for _, i := range cand {
		p := ix.Products[i]
		if !matchesFilters(p, c.Filters) {
			continue
		}
		out = append(out, scored{p: p, score: score(p, c.Amplifiers, visit.Now)})
	}

	// deterministic order: score desc, id asc
	slices.SortFunc(out, func(a, b scored) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		return strings.Compare(a.p.ID, b.p.ID)
	})

	limit := c.BasicInfo.NumberOfProducts
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}

	recs := make([]campaign.Recommendation, 0, len(out))
	for _, sp := range out {
		rec := campaign.Recommendation{
			ID:       sp.p.ID,
			Name:     sp.p.Name,
			URL:      sp.p.URL,
			Image:    sp.p.Image,
			Category: sp.p.Category,
			Rating:   sp.p.Rating,
		}
		if sp.p.Price > 0 {
			rec.Price = e.formatPrice(sp.p.Price)
		}
		recs = append(recs, rec)
	}
	return recs
}

// candidates narrows by inverted index: each configured include dimension
// intersects the union of its postings; exclusions subtract afterwards.
func candidates(ix indexes, f campaign.Filters) []int {
	cand := newSet(rangeIndices(len(ix.Products)))

	if len(f.IncludeCategories) > 0 {
		cand = cand.intersect(union(ix.ByCategory, f.IncludeCategories))
	}
	if len(f.IncludeTags) > 0 {
		cand = cand.intersect(union(ix.ByTag, f.IncludeTags))
	}
	if len(f.Brands) > 0 {
		cand = cand.intersect(union(ix.ByBrand, f.Brands))
	}
	if len(f.Attributes) > 0 {
		cand = cand.intersect(union(ix.ByAttribute, f.Attributes))
	}
	for _, id := range f.ExcludeCategories {
		cand = cand.subtract(ix.ByCategory[id])
	}
	return cand.list()
}

// matchesFilters is the final per-product verification the indexes cannot
// express.
func matchesFilters(p Product, f campaign.Filters) bool {
	for _, id := range f.ExcludeProducts {
		if p.ID == id {
			return false
		}
	}
	if !f.PriceRange.Contains(p.Price) {
		return false
	}
	if f.StockStatus != "" && p.StockStatus != f.StockStatus {
		return false
	}
	if f.ProductType != "" && f.ProductType != "all" && p.Type != f.ProductType {
		return false
	}
	if f.ExcludeSaleProducts && p.OnSale {
		return false
	}
	if f.ExcludeFeaturedProducts && p.Featured {
		return false
	}
	return true
}

// score applies amplifier boosts on top of a unit base. Boosts only reorder
// products that already passed the filters.
func score(p Product, a campaign.Amplifiers, now time.Time) float64 {
	s := 1.0
	if a.SalesPerformanceBoost {
		factor := a.SalesBoostFactor
		if factor <= 0 {
			factor = 1.5
		}
		s += factor * math.Log1p(float64(p.Sales30d))
	}
	if a.InventoryLevelBoost {
		threshold := a.InventoryThreshold
		if threshold <= 0 {
			threshold = 10
		}
		switch a.InventoryBoostType {
		case "low":
			if p.StockQty > 0 && p.StockQty <= threshold {
				s += 0.5
			}
		default: // high
			if p.StockQty >= threshold {
				s += 0.5
			}
		}
	}
	if a.SeasonalTrendingBoost {
		for _, kw := range a.TrendingKeywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			for _, pk := range p.Keywords {
				if strings.ToLower(pk) == kw {
					s += 0.3
					break
				}
			}
		}
		if d := trendingWindow(a.TrendingDuration); d > 0 && now.Sub(p.CreatedAt) <= d {
			s += 0.2
		}
	}
	return s
}

func trendingWindow(duration string) time.Duration {
	switch duration {
	case "7days":
		return 7 * 24 * time.Hour
	case "30days":
		return 30 * 24 * time.Hour
	case "90days":
		return 90 * 24 * time.Hour
	default:
		return 0
	}
}

// visible applies the campaign's time/user/device/cart gates.
func visible(v campaign.Visibility, visit Visit) bool {
	now := visit.Now
	if v.StartDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", v.StartDate, now.Location()); err == nil && now.Before(t) {
			return false
		}
	}
	if v.EndDate != "" {
		if t, err := time.ParseInLocation("2006-01-02", v.EndDate, now.Location()); err == nil && now.After(t.Add(24*time.Hour)) {
			return false
		}
	}
	if len(v.DaysOfWeek) > 0 {
		day := strings.ToLower(now.Weekday().String())
		if !slices.Contains(v.DaysOfWeek, day) {
			return false
		}
	}
	if v.TimeRange != nil && !inTimeRange(*v.TimeRange, now) {
		return false
	}

	if v.DeviceType != "" && v.DeviceType != "all" && v.DeviceType != visit.Device {
		return false
	}
	switch v.UserLoginStatus {
	case "logged-in":
		if !visit.LoggedIn {
			return false
		}
	case "guest":
		if visit.LoggedIn {
			return false
		}
	}
	if len(v.UserRoles) > 0 {
		found := false
		for _, r := range visit.Roles {
			if slices.Contains(v.UserRoles, r) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if !v.CartItemsCount.Contains(visit.CartItems) {
		return false
	}
	if !v.CartValueRange.Contains(visit.CartValue) {
		return false
	}
	// Required-in-cart gates pass when any of the listed items is present.
	if len(v.RequiredProductsInCart) > 0 && !intersects(v.RequiredProductsInCart, visit.CartProducts) {
		return false
	}
	if len(v.RequiredCategoriesInCart) > 0 && !intersects(v.RequiredCategoriesInCart, visit.CartCategories) {
		return false
	}
	return true
}

func inTimeRange(tr campaign.TimeRange, now time.Time) bool {
	start, err1 := time.Parse("15:04", tr.Start)
	end, err2 := time.Parse("15:04", tr.End)
	if err1 != nil || err2 != nil {
		return true
	}
	cur := now.Hour()*60 + now.Minute()
	s := start.Hour()*60 + start.Minute()
	e := end.Hour()*60 + end.Minute()
	if s <= e {
		return cur >= s && cur <= e
	}
	// overnight window, e.g. 22:00-06:00
	return cur >= s || cur <= e
}

// personalized applies location and customer gates. Weighting fields are
// stored for the upstream scoring pipeline and do not gate here.
func personalized(p campaign.Personalization, visit Visit) bool {
	if len(p.SelectedCountries) > 0 && !slices.Contains(p.SelectedCountries, visit.Country) {
		return false
	}
	if len(p.SelectedStates) > 0 && !slices.Contains(p.SelectedStates, visit.State) {
		return false
	}
	if p.CustomerType != "" && p.CustomerType != "all" && p.CustomerType != visit.CustomerType {
		return false
	}
	if p.SpendingTier != "" && p.SpendingTier != "all" && p.SpendingTier != visit.SpendingTier {
		return false
	}
	return true
}

func intersects(want, have []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

func rangeIndices(n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = i
	}
	return out
}

func union(m map[string][]int, keys []string) set {
	s := set{}
	for _, k := range keys {
		for _, v := range m[k] {
			s[v] = struct{}{}
		}
	}
	return s
}

type set map[int]struct{}

func newSet(idx []int) set {
	s := set{}
	for _, v := range idx {
		s[v] = struct{}{}
	}
	return s
}

func (s set) intersect(other set) set {
	res := set{}
	for k := range s {
		if _, ok := other[k]; ok {
			res[k] = struct{}{}
		}
	}
	return res
}

func (s set) subtract(idx []int) set {
	for _, v := range idx {
		delete(s, v)
	}
	return s
}

func (s set) list() []int {
	out := make([]int, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
