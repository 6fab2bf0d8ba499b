// Package client provides the HTTP-backed catalog provider, used when the
// catalog lives behind a remote commerce API instead of local tables.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"upsell-widget-engine/internal/namecache"
)

type Catalog struct {
	http *resty.Client
}

// NewCatalog builds a provider against baseURL. token is sent as a bearer
// token on every request.
func NewCatalog(baseURL, token string, timeout time.Duration) *Catalog {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Catalog{http: c}
}

type listResponse struct {
	Success bool              `json:"success"`
	Data    []namecache.Entry `json:"data"`
}

func (c *Catalog) list(ctx context.Context, path string, query map[string]string) ([]namecache.Entry, error) {
	var out listResponse
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: status %s", path, resp.Status())
	}
	if !out.Success {
		return nil, fmt.Errorf("fetch %s: provider reported failure", path)
	}
	return out.Data, nil
}

func (c *Catalog) ListCategories(ctx context.Context) ([]namecache.Entry, error) {
	return c.list(ctx, "/v1/catalog/categories", nil)
}

func (c *Catalog) ListTags(ctx context.Context) ([]namecache.Entry, error) {
	return c.list(ctx, "/v1/catalog/tags", nil)
}

func (c *Catalog) ListBrands(ctx context.Context) ([]namecache.Entry, error) {
	return c.list(ctx, "/v1/catalog/brands", nil)
}

func (c *Catalog) ListAttributes(ctx context.Context) ([]namecache.Entry, error) {
	return c.list(ctx, "/v1/catalog/attributes", nil)
}

func (c *Catalog) ListCountries(ctx context.Context) ([]namecache.Entry, error) {
	return c.list(ctx, "/v1/catalog/countries", nil)
}

func (c *Catalog) ListStates(ctx context.Context, countryCodes []string) ([]namecache.Entry, error) {
	if len(countryCodes) == 0 {
		return nil, nil
	}
	return c.list(ctx, "/v1/catalog/states", map[string]string{
		"countries": strings.Join(countryCodes, ","),
	})
}

func (c *Catalog) ProductsByIDs(ctx context.Context, ids []string) ([]namecache.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return c.list(ctx, "/v1/catalog/products", map[string]string{
		"ids": strings.Join(ids, ","),
	})
}
