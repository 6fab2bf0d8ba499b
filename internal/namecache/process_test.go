package namecache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upsell-widget-engine/internal/campaign"
)

func TestProcessFilterData(t *testing.T) {
	p := newStub()
	p.categories = []Entry{{ID: "10", Name: "Kitchen"}, {ID: "11", Name: "Garden"}}
	p.tags = []Entry{{ID: "20", Name: "Sale"}}
	p.products = map[string]Entry{"30": {ID: "30", Name: "Old Mug"}}
	c, _ := newTestCache(p)

	got := c.ProcessFilterData(context.Background(), campaign.Filters{
		IncludeCategories: []string{"10"},
		ExcludeCategories: []string{"11"},
		IncludeTags:       []string{"20"},
		ExcludeProducts:   []string{"30"},
	})

	assert.Equal(t, []string{"Kitchen"}, got.IncludeCategoryNames)
	assert.Equal(t, []string{"Garden"}, got.ExcludeCategoryNames)
	assert.Equal(t, []string{"Sale"}, got.IncludeTagNames)
	assert.Equal(t, []string{"Old Mug"}, got.ExcludeProductNames)
	assert.Nil(t, got.BrandNames)
	// raw ids carried through untouched
	assert.Equal(t, []string{"10"}, got.IncludeCategories)
}

func TestProcessFilterDataEmptySkipsProvider(t *testing.T) {
	p := newStub()
	c, _ := newTestCache(p)

	got := c.ProcessFilterData(context.Background(), campaign.Filters{})
	assert.Empty(t, p.calls)
	assert.Nil(t, got.IncludeCategoryNames)
}

func TestProcessVisibilityData(t *testing.T) {
	p := newStub()
	p.categories = []Entry{{ID: "10", Name: "Kitchen"}}
	p.products = map[string]Entry{"1": {ID: "1", Name: "Mug"}}
	c, _ := newTestCache(p)

	got := c.ProcessVisibilityData(context.Background(), campaign.Visibility{
		RequiredProductsInCart:   []string{"1", "2"},
		RequiredCategoriesInCart: []string{"10"},
	})

	assert.Equal(t, []string{"Mug", "Product 2"}, got.RequiredProductsInCartNames)
	assert.Equal(t, []string{"Kitchen"}, got.RequiredCategoriesInCartNames)
}

func TestProcessPersonalizationData(t *testing.T) {
	p := newStub()
	p.countries = []Entry{{ID: "US", Name: "United States"}}
	p.states = []Entry{{ID: "US:CA", Name: "California", Country: "US"}}
	c, _ := newTestCache(p)

	got := c.ProcessPersonalizationData(context.Background(), campaign.Personalization{
		SelectedCountries: []string{"US", "DE"},
		SelectedStates:    []string{"US:CA"},
	})

	assert.Equal(t, []string{"United States", "Country DE"}, got.SelectedCountryNames)
	assert.Equal(t, []string{"California"}, got.SelectedStateNames)
	// state lookup is scoped to the selected countries
	assert.Equal(t, []string{"US", "DE"}, p.lastStates)
}

func TestProcessedFiltersJSONShape(t *testing.T) {
	p := newStub()
	p.categories = []Entry{{ID: "10", Name: "Kitchen"}}
	c, _ := newTestCache(p)

	out := c.ProcessFilterData(context.Background(), campaign.Filters{
		IncludeCategories: []string{"10"},
	})
	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, []any{"10"}, m["includeCategories"])
	assert.Equal(t, []any{"Kitchen"}, m["includeCategoryNames"])
	_, hasEmpty := m["brandNames"]
	assert.False(t, hasEmpty, "empty name lists must be omitted")
}
