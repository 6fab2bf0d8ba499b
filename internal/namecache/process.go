package namecache

import (
	"context"

	"upsell-widget-engine/internal/campaign"
)

// The Process* helpers decorate saved campaign config with resolved display
// names so the admin UI can show labels instead of raw ids when a campaign
// is reopened for editing.

type ProcessedFilters struct {
	campaign.Filters
	IncludeCategoryNames []string `json:"includeCategoryNames,omitempty"`
	ExcludeCategoryNames []string `json:"excludeCategoryNames,omitempty"`
	IncludeTagNames      []string `json:"includeTagNames,omitempty"`
	BrandNames           []string `json:"brandNames,omitempty"`
	AttributeNames       []string `json:"attributeNames,omitempty"`
	ExcludeProductNames  []string `json:"excludeProductNames,omitempty"`
}

func (c *Cache) ProcessFilterData(ctx context.Context, f campaign.Filters) ProcessedFilters {
	out := ProcessedFilters{Filters: f}
	if len(f.IncludeCategories) > 0 {
		out.IncludeCategoryNames = c.CategoryNames(ctx, f.IncludeCategories)
	}
	if len(f.ExcludeCategories) > 0 {
		out.ExcludeCategoryNames = c.CategoryNames(ctx, f.ExcludeCategories)
	}
	if len(f.IncludeTags) > 0 {
		out.IncludeTagNames = c.TagNames(ctx, f.IncludeTags)
	}
	if len(f.Brands) > 0 {
		out.BrandNames = c.BrandNames(ctx, f.Brands)
	}
	if len(f.Attributes) > 0 {
		out.AttributeNames = c.AttributeNames(ctx, f.Attributes)
	}
	if len(f.ExcludeProducts) > 0 {
		out.ExcludeProductNames = c.ProductNames(ctx, f.ExcludeProducts)
	}
	return out
}

type ProcessedVisibility struct {
	campaign.Visibility
	RequiredProductsInCartNames   []string `json:"requiredProductsInCartNames,omitempty"`
	RequiredCategoriesInCartNames []string `json:"requiredCategoriesInCartNames,omitempty"`
}

func (c *Cache) ProcessVisibilityData(ctx context.Context, v campaign.Visibility) ProcessedVisibility {
	out := ProcessedVisibility{Visibility: v}
	if len(v.RequiredProductsInCart) > 0 {
		out.RequiredProductsInCartNames = c.ProductNames(ctx, v.RequiredProductsInCart)
	}
	if len(v.RequiredCategoriesInCart) > 0 {
		out.RequiredCategoriesInCartNames = c.CategoryNames(ctx, v.RequiredCategoriesInCart)
	}
	return out
}

type ProcessedPersonalization struct {
	campaign.Personalization
	SelectedCountryNames []string `json:"selectedCountryNames,omitempty"`
	SelectedStateNames   []string `json:"selectedStateNames,omitempty"`
}

func (c *Cache) ProcessPersonalizationData(ctx context.Context, p campaign.Personalization) ProcessedPersonalization {
	out := ProcessedPersonalization{Personalization: p}
	if len(p.SelectedCountries) > 0 {
		out.SelectedCountryNames = c.CountryNames(ctx, p.SelectedCountries)
	}
	if len(p.SelectedStates) > 0 {
		out.SelectedStateNames = c.StateNames(ctx, p.SelectedStates, p.SelectedCountries)
	}
	return out
}
