package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"upsell-widget-engine/internal/campaign"
	"upsell-widget-engine/internal/dispatch"
	"upsell-widget-engine/internal/engine"
	"upsell-widget-engine/internal/hooks"
	"upsell-widget-engine/internal/namecache"
	"upsell-widget-engine/internal/render"
	"upsell-widget-engine/internal/storage"
)

type Handler struct {
	Names     *namecache.Cache
	Campaigns *storage.Cache
	Eng       *engine.Engine
}

func NewHandler(names *namecache.Cache, campaigns *storage.Cache, eng *engine.Engine) *Handler {
	return &Handler{Names: names, Campaigns: campaigns, Eng: eng}
}

// ajaxResponse is the admin wire shape: {"success": bool, "data": ...}.
type ajaxResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ajaxResponse{Success: false, Data: msg})
}

func entriesOrEmpty(entries []namecache.Entry) []namecache.Entry {
	if entries == nil {
		return []namecache.Entry{}
	}
	return entries
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AdminAjax is the single admin endpoint, dispatching on the form field
// "action". Requests are form-encoded, responses {success, data}.
func (h *Handler) AdminAjax(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	ctx := r.Context()

	switch r.PostFormValue("action") {
	case "get_categories":
		writeSuccess(w, entriesOrEmpty(h.Names.FetchCategories(ctx)))
	case "get_tags":
		writeSuccess(w, entriesOrEmpty(h.Names.FetchTags(ctx)))
	case "get_brands":
		writeSuccess(w, entriesOrEmpty(h.Names.FetchBrands(ctx)))
	case "get_attributes":
		writeSuccess(w, entriesOrEmpty(h.Names.FetchAttributes(ctx)))
	case "get_countries":
		writeSuccess(w, entriesOrEmpty(h.Names.FetchCountries(ctx)))
	case "get_states":
		countries := splitCSV(r.PostFormValue("countries"))
		writeSuccess(w, entriesOrEmpty(h.Names.FetchStates(ctx, countries)))
	case "get_products_by_ids":
		ids := splitCSV(r.PostFormValue("product_ids"))
		writeSuccess(w, entriesOrEmpty(h.Names.FetchProductsByIDs(ctx, ids)))
	case "process_filter_data":
		var f campaign.Filters
		if !decodeDataField(w, r, &f) {
			return
		}
		writeSuccess(w, h.Names.ProcessFilterData(ctx, f))
	case "process_visibility_data":
		var v campaign.Visibility
		if !decodeDataField(w, r, &v) {
			return
		}
		writeSuccess(w, h.Names.ProcessVisibilityData(ctx, v))
	case "process_personalization_data":
		var p campaign.Personalization
		if !decodeDataField(w, r, &p) {
			return
		}
		writeSuccess(w, h.Names.ProcessPersonalizationData(ctx, p))
	case "get_cache_stats":
		writeSuccess(w, h.Names.Stats())
	case "clear_cache":
		h.Names.ClearAll()
		writeSuccess(w, true)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

// decodeDataField parses the JSON "data" form field into v.
func decodeDataField(w http.ResponseWriter, r *http.Request, v any) bool {
	raw := r.PostFormValue("data")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing data")
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed data")
		return false
	}
	return true
}

func visitFromQuery(r *http.Request) engine.Visit {
	q := r.URL.Query()
	return engine.Visit{
		Now:          time.Now(),
		Device:       strings.ToLower(q.Get("device")),
		LoggedIn:     q.Get("logged_in") == "1",
		Roles:        splitCSV(q.Get("roles")),
		Country:      strings.ToUpper(q.Get("country")),
		State:        strings.ToUpper(q.Get("state")),
		CustomerType: strings.ToLower(q.Get("customer_type")),
		SpendingTier: strings.ToLower(q.Get("spending_tier")),
		CartProducts: splitCSV(q.Get("cart_products")),
	}
}

// Preview renders one campaign's widget HTML without dispatch, for admin
// preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := h.Campaigns.GetCampaign(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown campaign")
		return
	}
	recs := h.Eng.Recommend(r.Context(), &c, visitFromQuery(r))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(render.CampaignHTML(&c, recs, c.Type)))
}

// RenderPage simulates a storefront page render: every active campaign is
// dispatched against the requested page context, then all subscribed hooks
// fire in registration order and the concatenated markup is returned.
func (h *Handler) RenderPage(w http.ResponseWriter, r *http.Request) {
	page := dispatch.Page{Name: strings.ToLower(r.URL.Query().Get("page"))}
	visit := visitFromQuery(r)

	bus := hooks.NewBus()
	d := dispatch.New(bus)

	campaigns := h.Campaigns.GetCampaigns()
	for i := range campaigns {
		c := campaigns[i]
		recs := h.Eng.Recommend(r.Context(), &c, visit)
		d.Display(page, &c, recs, c.Type)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, hook := range bus.Hooks() {
		bus.Fire(hook, w)
	}
}
