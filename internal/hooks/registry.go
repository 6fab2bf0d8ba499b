package hooks

import "upsell-widget-engine/internal/campaign"

// The registry is the single source of truth for where a campaign widget may
// be injected: each display location owns a fixed set of named hook points.
// The tables are built once at load and never mutated; accessors hand out
// copies.

var locationOrder = []string{
	"home-page",
	"product-page",
	"cart-page",
	"checkout-page",
	"my-account-page",
	"sidebar",
	"footer",
	"popup",
}

var locationHooks = map[string]map[string]string{
	"home-page": {
		"wp_head":      "Before Page Head",
		"wp_body_open": "After Body Open",
		"get_header":   "After Header",
		"wp_footer":    "Before Footer",
		"get_footer":   "After Footer",
		"the_content":  "Content Area",
		"loop_start":   "Before Posts Loop",
		"loop_end":     "After Posts Loop",
	},
	"product-page": {
		"woocommerce_before_single_product":        "Before Single Product",
		"woocommerce_single_product_summary":       "Single Product Summary",
		"woocommerce_before_add_to_cart_form":      "Before Add to Cart Form",
		"woocommerce_before_add_to_cart_quantity":  "Before Add to Cart Quantity",
		"woocommerce_after_add_to_cart_quantity":   "After Add to Cart Quantity",
		"woocommerce_after_single_variation":       "After Single Variation",
		"woocommerce_product_meta_end":             "Product Meta End",
		"woocommerce_after_single_product_summary": "After Single Product Summary",
		"woocommerce_after_single_product":         "After Single Product",
	},
	"cart-page": {
		"woocommerce_before_cart":          "Before Cart",
		"woocommerce_before_cart_table":    "Before Cart Table",
		"woocommerce_before_cart_contents": "Before Cart Contents",
		"woocommerce_cart_contents":        "Cart Contents",
		"woocommerce_cart_coupon":          "Cart Coupon Area",
		"woocommerce_after_cart_contents":  "After Cart Contents",
		"woocommerce_after_cart_table":     "After Cart Table",
		"woocommerce_cart_collaterals":     "Cart Collaterals",
		"woocommerce_after_cart":           "After Cart",
	},
	"checkout-page": {
		"woocommerce_before_checkout_form":               "Before Checkout Form",
		"woocommerce_checkout_before_customer_details":   "Before Customer Details",
		"woocommerce_checkout_billing":                   "Billing Section",
		"woocommerce_checkout_shipping":                  "Shipping Section",
		"woocommerce_checkout_after_customer_details":    "After Customer Details",
		"woocommerce_checkout_before_order_review":       "Before Order Review",
		"woocommerce_checkout_order_review":              "Order Review",
		"woocommerce_review_order_before_cart_contents":  "Before Cart Contents in Review",
		"woocommerce_review_order_after_cart_contents":   "After Cart Contents in Review",
		"woocommerce_review_order_before_submit":         "Before Submit Button",
		"woocommerce_checkout_after_order_review":        "After Order Review",
		"woocommerce_after_checkout_form":                "After Checkout Form",
	},
	"my-account-page": {
		"woocommerce_before_account_navigation":      "Before Account Navigation",
		"woocommerce_account_navigation":             "Account Navigation",
		"woocommerce_after_account_navigation":       "After Account Navigation",
		"woocommerce_account_content":                "Account Content Area",
		"woocommerce_before_account_orders":          "Before Account Orders",
		"woocommerce_after_account_orders":           "After Account Orders",
		"woocommerce_before_account_downloads":       "Before Account Downloads",
		"woocommerce_after_account_downloads":        "After Account Downloads",
		"woocommerce_before_account_payment_methods": "Before Payment Methods",
		"woocommerce_after_account_payment_methods":  "After Payment Methods",
		"woocommerce_account_dashboard":              "Account Dashboard",
	},
	"sidebar": {
		"dynamic_sidebar": "Widget Area",
		"wp_footer":       "Footer Area",
	},
	"footer": {
		"wp_footer":  "Footer Area",
		"get_footer": "After Footer",
	},
	"popup": {
		"wp_footer": "Footer (Popup Script)",
		"wp_head":   "Head (Popup Script)",
	},
}

var locationLabels = map[string]string{
	"home-page":       "Home Page",
	"product-page":    "Product Page",
	"cart-page":       "Cart Page",
	"checkout-page":   "Checkout Page",
	"my-account-page": "My Account Page",
	"sidebar":         "Sidebar",
	"footer":          "Footer",
	"popup":           "Popup",
}

var defaultHooks = map[string]string{
	"home-page":       "the_content",
	"product-page":    "woocommerce_product_meta_end",
	"cart-page":       "woocommerce_after_cart_table",
	"checkout-page":   "woocommerce_checkout_after_order_review",
	"my-account-page": "woocommerce_account_content",
	"sidebar":         "dynamic_sidebar",
	"footer":          "wp_footer",
	"popup":           "wp_footer",
}

// IsValidHookForLocation reports whether hook is a registered hook point of
// the given display location.
func IsValidHookForLocation(location, hook string) bool {
	hs, ok := locationHooks[location]
	if !ok {
		return false
	}
	_, ok = hs[hook]
	return ok
}

// HooksForLocation returns the hook->label map for a location, empty for an
// unknown location.
func HooksForLocation(location string) map[string]string {
	out := make(map[string]string, len(locationHooks[location]))
	for k, v := range locationHooks[location] {
		out[k] = v
	}
	return out
}

// DisplayLocations returns all location keys in their canonical order.
func DisplayLocations() []string {
	return append([]string(nil), locationOrder...)
}

// DefaultHook returns the default hook point for a location, "" if unknown.
func DefaultHook(location string) string {
	return defaultHooks[location]
}

// LocationLabel returns the human label for a location, falling back to the
// key itself.
func LocationLabel(location string) string {
	if l, ok := locationLabels[location]; ok {
		return l
	}
	return location
}

// HookLabel returns the label of a hook within a location, falling back to
// the hook name.
func HookLabel(location, hook string) string {
	if l, ok := locationHooks[location][hook]; ok {
		return l
	}
	return hook
}

// ValidateCampaign reports whether a campaign's configured placement is a
// valid (location, hook) pair. Campaigns failing this are inert: they are
// never dispatched.
func ValidateCampaign(c *campaign.Campaign) bool {
	if c == nil {
		return false
	}
	bi := c.BasicInfo
	if bi.DisplayLocation == "" || bi.HookLocation == "" {
		return false
	}
	return IsValidHookForLocation(bi.DisplayLocation, bi.HookLocation)
}
