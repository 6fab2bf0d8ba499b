// Package render turns a campaign plus its resolved recommendation list into
// widget markup. Rendering is pure: item order is the caller's, missing
// optional fields drop their sub-element only, and no input can make it fail.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"upsell-widget-engine/internal/campaign"
	"upsell-widget-engine/internal/observability"
)

const widgetTmpl = `<div class="upspr-campaign-widget{{if .TypeClass}} {{.TypeClass}}{{end}}" data-campaign-id="{{.ID}}">
{{- if .Title}}<h3 class="upspr-widget-title">{{.Title}}</h3>{{end}}
<div class="upspr-products-grid">
{{- range .Items}}
<div class="upspr-product-item" data-product-id="{{.ID}}">
{{- if .Image}}
<div class="upspr-product-image"><a href="{{.URL}}" class="upspr-product-link"><img src="{{.Image}}" alt="{{.Name}}"></a></div>
{{- end}}
<div class="upspr-product-details">
<h4 class="upspr-product-name"><a href="{{.URL}}" class="upspr-product-link">{{.Name}}</a></h4>
{{- if .Category}}<div class="upspr-product-category">{{.Category}}</div>{{end}}
{{- if .Rating}}<div class="upspr-product-rating">{{.Rating}}</div>{{end}}
{{- if .Price}}<div class="upspr-product-price">{{.Price}}</div>{{end}}
{{- if .AddToCart}}<div class="upspr-add-to-cart"><a href="?add-to-cart={{.ID}}" class="button add_to_cart_button upspr-add-to-cart-btn" data-product_id="{{.ID}}">Add to Cart</a></div>{{end}}
</div>
</div>
{{- end}}
</div>
</div>
`

var widget = template.Must(template.New("widget").Parse(widgetTmpl))

type widgetData struct {
	ID        string
	TypeClass string
	Title     string
	Items     []itemData
}

type itemData struct {
	ID        string
	Name      string
	URL       string
	Image     string
	Category  string
	Rating    template.HTML
	Price     string
	AddToCart bool
}

// WriteCampaignWidget renders the widget for c onto w. A nil campaign writes
// nothing.
func WriteCampaignWidget(w io.Writer, c *campaign.Campaign, recs []campaign.Recommendation, campaignType string) {
	if c == nil {
		return
	}
	bi := c.BasicInfo
	data := widgetData{
		ID:        c.ID,
		TypeClass: typeClass(campaignType),
		Title:     bi.RuleName,
		Items:     make([]itemData, 0, len(recs)),
	}
	for _, r := range recs {
		item := itemData{
			ID:        r.ID,
			Name:      r.Name,
			URL:       r.URL,
			Image:     r.Image,
			AddToCart: bi.ShowAddToCart(),
		}
		if bi.ShowCategory() {
			item.Category = r.Category
		}
		if bi.ShowRatings() && r.Rating > 0 {
			item.Rating = ratingHTML(r.Rating)
		}
		if bi.ShowPrices() {
			item.Price = r.Price
		}
		data.Items = append(data.Items, item)
	}
	if err := widget.Execute(w, data); err != nil {
		// The template is static; only writer failures land here.
		log.Error().Err(err).Str("campaign_id", c.ID).Msg("render widget")
		return
	}
	observability.RendersTotal.Inc()
}

// CampaignHTML is the side-effect-free variant of WriteCampaignWidget.
func CampaignHTML(c *campaign.Campaign, recs []campaign.Recommendation, campaignType string) string {
	var buf bytes.Buffer
	WriteCampaignWidget(&buf, c, recs, campaignType)
	return buf.String()
}

// ratingHTML builds the star-rating fragment. Inputs are numeric, never user
// text, so marking the fragment safe is sound.
func ratingHTML(rating float64) template.HTML {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	pct := rating / 5 * 100
	return template.HTML(fmt.Sprintf(
		`<div class="star-rating" role="img" aria-label="Rated %.1f out of 5"><span style="width:%.0f%%"></span></div>`,
		rating, pct))
}

// typeClass maps a campaign type to its widget CSS class, dropping anything
// that is not a safe class token.
func typeClass(campaignType string) string {
	t := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-' || r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, campaignType)
	if t == "" {
		return ""
	}
	return "upspr-" + t + "-widget"
}

// FormatPrice renders an amount as display text, e.g. "$12.99".
func FormatPrice(symbol string, amount float64) string {
	if symbol == "" {
		symbol = "$"
	}
	return fmt.Sprintf("%s%.2f", symbol, amount)
}
