// Package dispatch matches campaigns against the current page context and
// subscribes their render callbacks on the hook bus. It never renders
// directly; output happens when the page pipeline fires the hook.
package dispatch

import (
	"io"

	"github.com/rs/zerolog/log"

	"upsell-widget-engine/internal/campaign"
	"upsell-widget-engine/internal/hooks"
	"upsell-widget-engine/internal/observability"
	"upsell-widget-engine/internal/render"
)

// PageContext answers the per-location page predicates for the current
// request.
type PageContext interface {
	IsFrontPage() bool
	IsHome() bool
	IsProduct() bool
	IsCart() bool
	IsCheckout() bool
	IsAccountPage() bool
}

// All renderers register at the same hook priority; multiple campaigns on
// one hook render in registration order.
const hookPriority = 10

type Dispatcher struct {
	bus *hooks.Bus
}

func New(bus *hooks.Bus) *Dispatcher {
	return &Dispatcher{bus: bus}
}

// Display evaluates one campaign against the page and, on a full match,
// registers its renderer on the configured hook. The returned bool reports
// registration, not the later render.
func (d *Dispatcher) Display(page PageContext, c *campaign.Campaign, recs []campaign.Recommendation, campaignType string) bool {
	if c == nil || len(recs) == 0 {
		return d.rejected()
	}
	loc := c.BasicInfo.DisplayLocation
	hook := c.BasicInfo.HookLocation
	if loc == "" || hook == "" {
		return d.rejected()
	}
	if !hooks.IsValidHookForLocation(loc, hook) {
		log.Debug().Str("campaign_id", c.ID).Str("location", loc).Str("hook", hook).
			Msg("invalid hook for location")
		return d.rejected()
	}
	if !ShouldDisplay(page, loc) {
		return d.rejected()
	}

	d.bus.Register(hook, hookPriority, func(w io.Writer) {
		render.WriteCampaignWidget(w, c, recs, campaignType)
	})
	observability.DispatchesTotal.WithLabelValues("registered").Inc()
	return true
}

func (d *Dispatcher) rejected() bool {
	observability.DispatchesTotal.WithLabelValues("rejected").Inc()
	return false
}

// ShouldDisplay reports whether a display location matches the current page.
// sidebar, footer and popup display on any page.
func ShouldDisplay(page PageContext, location string) bool {
	switch location {
	case "home-page":
		return page.IsFrontPage() || page.IsHome()
	case "product-page":
		return page.IsProduct()
	case "cart-page":
		return page.IsCart()
	case "checkout-page":
		return page.IsCheckout()
	case "my-account-page":
		return page.IsAccountPage()
	case "sidebar", "footer", "popup":
		return true
	default:
		return false
	}
}

// Page is a PageContext built from the name of the page being rendered. The
// HTTP layer derives it from the simulated page parameter.
type Page struct {
	Name string // front, home, product, cart, checkout, account
}

func (p Page) IsFrontPage() bool   { return p.Name == "front" }
func (p Page) IsHome() bool        { return p.Name == "home" }
func (p Page) IsProduct() bool     { return p.Name == "product" }
func (p Page) IsCart() bool        { return p.Name == "cart" }
func (p Page) IsCheckout() bool    { return p.Name == "checkout" }
func (p Page) IsAccountPage() bool { return p.Name == "account" }
