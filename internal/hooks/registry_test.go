package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upsell-widget-engine/internal/campaign"
)

func TestEveryLocationHasHooksAndDefault(t *testing.T) {
	locations := DisplayLocations()
	assert.Len(t, locations, 8)

	for _, loc := range locations {
		hs := HooksForLocation(loc)
		assert.NotEmpty(t, hs, "location %s has no hooks", loc)

		def := DefaultHook(loc)
		assert.NotEmpty(t, def, "location %s has no default hook", loc)
		assert.Contains(t, hs, def, "default hook of %s not in its hook map", loc)
	}
}

func TestIsValidHookForLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		hook     string
		want     bool
	}{
		{"valid product hook", "product-page", "woocommerce_product_meta_end", true},
		{"valid cart hook", "cart-page", "woocommerce_after_cart_table", true},
		{"hook from other location", "checkout-page", "woocommerce_product_meta_end", false},
		{"unknown hook", "checkout-page", "checkout-order-review", false},
		{"unknown location", "landing-page", "wp_footer", false},
		{"empty location", "", "wp_footer", false},
		{"empty hook", "footer", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidHookForLocation(tt.location, tt.hook))
		})
	}
}

func TestHooksForLocationUnknownIsEmpty(t *testing.T) {
	assert.Empty(t, HooksForLocation("nope"))
}

func TestHooksForLocationReturnsCopy(t *testing.T) {
	hs := HooksForLocation("footer")
	hs["injected"] = "Injected"
	assert.False(t, IsValidHookForLocation("footer", "injected"))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Product Page", LocationLabel("product-page"))
	assert.Equal(t, "unknown-loc", LocationLabel("unknown-loc"))
	assert.Equal(t, "Product Meta End", HookLabel("product-page", "woocommerce_product_meta_end"))
	assert.Equal(t, "mystery_hook", HookLabel("product-page", "mystery_hook"))
}

func TestValidateCampaign(t *testing.T) {
	valid := &campaign.Campaign{BasicInfo: campaign.BasicInfo{
		DisplayLocation: "product-page",
		HookLocation:    "woocommerce_product_meta_end",
	}}

	tests := []struct {
		name string
		c    *campaign.Campaign
		want bool
	}{
		{"nil campaign", nil, false},
		{"empty campaign", &campaign.Campaign{}, false},
		{"missing hook", &campaign.Campaign{BasicInfo: campaign.BasicInfo{DisplayLocation: "product-page"}}, false},
		{"missing location", &campaign.Campaign{BasicInfo: campaign.BasicInfo{HookLocation: "wp_footer"}}, false},
		{"invalid pair", &campaign.Campaign{BasicInfo: campaign.BasicInfo{
			DisplayLocation: "checkout-page", HookLocation: "checkout-order-review",
		}}, false},
		{"valid pair", valid, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCampaign(tt.c))
		})
	}
}
