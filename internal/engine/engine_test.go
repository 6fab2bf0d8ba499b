package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upsell-widget-engine/internal/campaign"
)

type staticCatalog []Product

func (s staticCatalog) LoadCatalog(context.Context) ([]Product, error) { return s, nil }

type failingCatalog struct{}

func (failingCatalog) LoadCatalog(context.Context) ([]Product, error) {
	return nil, errors.New("catalog down")
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

var tuesday = time.Date(2026, time.March, 3, 14, 30, 0, 0, time.UTC)

func testCatalog() staticCatalog {
	return staticCatalog{
		{
			ID: "1", Name: "Blue Mug", URL: "/mug", Price: 12.99,
			Categories: []string{"kitchen"}, Tags: []string{"sale"},
			Brands: []string{"acme"}, StockStatus: "instock", StockQty: 50,
			Sales30d: 100, Type: "simple",
		},
		{
			ID: "2", Name: "Teapot", URL: "/teapot", Price: 39.00,
			Categories: []string{"kitchen"}, Brands: []string{"acme"},
			StockStatus: "instock", StockQty: 3, Sales30d: 5, Type: "simple",
		},
		{
			ID: "3", Name: "Garden Hose", URL: "/hose", Price: 25.00,
			Categories: []string{"garden"}, StockStatus: "instock", StockQty: 20,
			Keywords: []string{"summer"}, Type: "simple",
			CreatedAt: tuesday.Add(-48 * time.Hour),
		},
		{
			ID: "4", Name: "Sold Out Pan", URL: "/pan", Price: 15.00,
			Categories: []string{"kitchen"}, StockStatus: "outofstock",
			OnSale: true, Type: "simple",
		},
	}
}

func newTestEngine(t *testing.T, src CatalogSource) *Engine {
	t.Helper()
	e := New(nil)
	require.NoError(t, e.BuildSnapshot(context.Background(), src))
	return e
}

func recIDs(recs []campaign.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestBuildSnapshotError(t *testing.T) {
	e := New(nil)
	assert.Error(t, e.BuildSnapshot(context.Background(), failingCatalog{}))
	assert.Empty(t, e.Recommend(context.Background(), &campaign.Campaign{}, Visit{Now: tuesday}))
}

func TestRecommendNilCampaign(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	assert.Nil(t, e.Recommend(context.Background(), nil, Visit{Now: tuesday}))
}

func TestIncludeFilters(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	ctx := context.Background()

	tests := []struct {
		name    string
		filters campaign.Filters
		want    []string
	}{
		{"no filters", campaign.Filters{}, []string{"1", "2", "3", "4"}},
		{"include category", campaign.Filters{IncludeCategories: []string{"kitchen"}}, []string{"1", "2", "4"}},
		{"include tag", campaign.Filters{IncludeTags: []string{"sale"}}, []string{"1"}},
		{"brand and category intersect", campaign.Filters{
			IncludeCategories: []string{"kitchen"}, Brands: []string{"acme"},
		}, []string{"1", "2"}},
		{"exclude category subtracts", campaign.Filters{ExcludeCategories: []string{"kitchen"}}, []string{"3"}},
		{"exclude product", campaign.Filters{
			IncludeCategories: []string{"kitchen"}, ExcludeProducts: []string{"2"},
		}, []string{"1", "4"}},
		{"price range", campaign.Filters{PriceRange: &campaign.Range{Min: floatPtr(20), Max: floatPtr(40)}}, []string{"2", "3"}},
		{"stock status", campaign.Filters{StockStatus: "instock"}, []string{"1", "2", "3"}},
		{"exclude sale products", campaign.Filters{ExcludeSaleProducts: true}, []string{"1", "2", "3"}},
		{"unknown include id matches nothing", campaign.Filters{IncludeCategories: []string{"nope"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &campaign.Campaign{Filters: tt.filters}
			c.BasicInfo.NumberOfProducts = 10
			got := recIDs(e.Recommend(ctx, c, Visit{Now: tuesday}))
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestBoostsReorderWithoutAdmitting(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	ctx := context.Background()

	c := &campaign.Campaign{
		Filters: campaign.Filters{IncludeCategories: []string{"kitchen"}, StockStatus: "instock"},
	}
	c.BasicInfo.NumberOfProducts = 10

	// without boosts: equal scores, id order
	assert.Equal(t, []string{"1", "2"}, recIDs(e.Recommend(ctx, c, Visit{Now: tuesday})))

	// sales boost lifts the high seller; the filtered-out pan stays out
	c.Amplifiers = campaign.Amplifiers{SalesPerformanceBoost: true}
	assert.Equal(t, []string{"1", "2"}, recIDs(e.Recommend(ctx, c, Visit{Now: tuesday})))

	// low-inventory boost lifts the teapot above the mug's sales boost
	c.Amplifiers = campaign.Amplifiers{
		InventoryLevelBoost: true, InventoryBoostType: "low", InventoryThreshold: 5,
	}
	assert.Equal(t, []string{"2", "1"}, recIDs(e.Recommend(ctx, c, Visit{Now: tuesday})))
}

func TestTrendingBoost(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	c := &campaign.Campaign{
		Amplifiers: campaign.Amplifiers{
			SeasonalTrendingBoost: true,
			TrendingKeywords:      []string{" Summer "},
			TrendingDuration:      "7days",
		},
	}
	c.BasicInfo.NumberOfProducts = 10

	got := recIDs(e.Recommend(context.Background(), c, Visit{Now: tuesday}))
	require.NotEmpty(t, got)
	// keyword and recency both hit product 3
	assert.Equal(t, "3", got[0])
}

func TestDefaultLimit(t *testing.T) {
	var big staticCatalog
	for i := 0; i < 10; i++ {
		big = append(big, Product{ID: fmt.Sprintf("p%02d", i), Name: "P", URL: "/p"})
	}
	e := newTestEngine(t, big)

	got := e.Recommend(context.Background(), &campaign.Campaign{}, Visit{Now: tuesday})
	assert.Len(t, got, 4)

	c := &campaign.Campaign{}
	c.BasicInfo.NumberOfProducts = 7
	assert.Len(t, e.Recommend(context.Background(), c, Visit{Now: tuesday}), 7)
}

func TestVisibilityGates(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	ctx := context.Background()

	base := Visit{Now: tuesday, Device: "desktop", LoggedIn: true, Roles: []string{"customer"}}

	tests := []struct {
		name  string
		vis   campaign.Visibility
		visit Visit
		shown bool
	}{
		{"no gates", campaign.Visibility{}, base, true},
		{"before start date", campaign.Visibility{StartDate: "2026-03-04"}, base, false},
		{"within dates", campaign.Visibility{StartDate: "2026-03-01", EndDate: "2026-03-03"}, base, true},
		{"after end date", campaign.Visibility{EndDate: "2026-03-01"}, base, false},
		{"matching weekday", campaign.Visibility{DaysOfWeek: []string{"tuesday"}}, base, true},
		{"wrong weekday", campaign.Visibility{DaysOfWeek: []string{"sunday"}}, base, false},
		{"inside time range", campaign.Visibility{TimeRange: &campaign.TimeRange{Start: "09:00", End: "17:00"}}, base, true},
		{"outside time range", campaign.Visibility{TimeRange: &campaign.TimeRange{Start: "18:00", End: "20:00"}}, base, false},
		{"overnight range spans midnight", campaign.Visibility{TimeRange: &campaign.TimeRange{Start: "22:00", End: "15:00"}}, base, true},
		{"device match", campaign.Visibility{DeviceType: "desktop"}, base, true},
		{"device mismatch", campaign.Visibility{DeviceType: "mobile"}, base, false},
		{"device all", campaign.Visibility{DeviceType: "all"}, base, true},
		{"logged-in required", campaign.Visibility{UserLoginStatus: "logged-in"}, base, true},
		{"guest required", campaign.Visibility{UserLoginStatus: "guest"}, base, false},
		{"role match", campaign.Visibility{UserRoles: []string{"customer", "editor"}}, base, true},
		{"role mismatch", campaign.Visibility{UserRoles: []string{"administrator"}}, base, false},
		{
			"cart items in range",
			campaign.Visibility{CartItemsCount: &campaign.IntRange{Min: intPtr(1), Max: intPtr(5)}},
			Visit{Now: tuesday, CartItems: 3},
			true,
		},
		{
			"cart items below min",
			campaign.Visibility{CartItemsCount: &campaign.IntRange{Min: intPtr(2)}},
			Visit{Now: tuesday, CartItems: 1},
			false,
		},
		{
			"cart value above max",
			campaign.Visibility{CartValueRange: &campaign.Range{Max: floatPtr(50)}},
			Visit{Now: tuesday, CartValue: 75},
			false,
		},
		{
			"any required product in cart",
			campaign.Visibility{RequiredProductsInCart: []string{"8", "9"}},
			Visit{Now: tuesday, CartProducts: []string{"9"}},
			true,
		},
		{
			"required product missing",
			campaign.Visibility{RequiredProductsInCart: []string{"8", "9"}},
			Visit{Now: tuesday, CartProducts: []string{"7"}},
			false,
		},
		{
			"any required category in cart",
			campaign.Visibility{RequiredCategoriesInCart: []string{"kitchen"}},
			Visit{Now: tuesday, CartCategories: []string{"kitchen", "garden"}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &campaign.Campaign{Visibility: tt.vis}
			got := e.Recommend(ctx, c, tt.visit)
			if tt.shown {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestPersonalizationGates(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	ctx := context.Background()

	visit := Visit{Now: tuesday, Country: "US", State: "US:NY", CustomerType: "returning", SpendingTier: "gold"}

	tests := []struct {
		name  string
		pers  campaign.Personalization
		shown bool
	}{
		{"no gates", campaign.Personalization{}, true},
		{"country match", campaign.Personalization{SelectedCountries: []string{"US", "CA"}}, true},
		{"country mismatch", campaign.Personalization{SelectedCountries: []string{"DE"}}, false},
		{"state match", campaign.Personalization{SelectedStates: []string{"US:NY"}}, true},
		{"state mismatch", campaign.Personalization{SelectedStates: []string{"US:CA"}}, false},
		{"customer type match", campaign.Personalization{CustomerType: "returning"}, true},
		{"customer type mismatch", campaign.Personalization{CustomerType: "new"}, false},
		{"customer type all", campaign.Personalization{CustomerType: "all"}, true},
		{"spending tier mismatch", campaign.Personalization{SpendingTier: "silver"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &campaign.Campaign{Personalization: tt.pers}
			got := e.Recommend(ctx, c, visit)
			if tt.shown {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestRecommendationFields(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	c := &campaign.Campaign{Filters: campaign.Filters{IncludeTags: []string{"sale"}}}

	got := e.Recommend(context.Background(), c, Visit{Now: tuesday})
	require.Len(t, got, 1)
	assert.Equal(t, "Blue Mug", got[0].Name)
	assert.Equal(t, "/mug", got[0].URL)
	assert.Equal(t, "$12.99", got[0].Price)
}

func TestSnapshotSwap(t *testing.T) {
	e := newTestEngine(t, testCatalog())
	ctx := context.Background()
	c := &campaign.Campaign{}
	c.BasicInfo.NumberOfProducts = 10

	require.Len(t, e.Recommend(ctx, c, Visit{Now: tuesday}), 4)

	require.NoError(t, e.BuildSnapshot(ctx, staticCatalog{{ID: "9", Name: "Only", URL: "/o"}}))
	got := e.Recommend(ctx, c, Visit{Now: tuesday})
	require.Len(t, got, 1)
	assert.Equal(t, "9", got[0].ID)
}

func BenchmarkRecommend(b *testing.B) {
	var catalog staticCatalog
	for i := 0; i < 5000; i++ {
		catalog = append(catalog, Product{
			ID:          fmt.Sprintf("p%05d", i),
			Name:        "Product",
			URL:         "/p",
			Price:       float64(i%100) + 0.99,
			Categories:  []string{fmt.Sprintf("cat-%d", i%20)},
			Tags:        []string{fmt.Sprintf("tag-%d", i%50)},
			StockStatus: "instock",
			StockQty:    i % 200,
			Sales30d:    i % 300,
		})
	}
	e := New(nil)
	if err := e.BuildSnapshot(context.Background(), catalog); err != nil {
		b.Fatal(err)
	}

	c := &campaign.Campaign{
		Filters: campaign.Filters{
			IncludeCategories: []string{"cat-3", "cat-7"},
			StockStatus:       "instock",
			PriceRange:        &campaign.Range{Min: floatPtr(10)},
		},
		Amplifiers: campaign.Amplifiers{SalesPerformanceBoost: true},
	}
	c.BasicInfo.NumberOfProducts = 8
	visit := Visit{Now: tuesday, Device: "desktop"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Recommend(context.Background(), c, visit)
	}
}
