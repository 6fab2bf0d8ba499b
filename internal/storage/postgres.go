package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"upsell-widget-engine/internal/campaign"
	"upsell-widget-engine/internal/config"
	"upsell-widget-engine/internal/engine"
	"upsell-widget-engine/internal/namecache"
)

// Store wraps the Postgres pool holding campaigns and the product catalog.
// It also serves as the default namecache.Provider.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Postgres.MaxIdleConns)
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) PgxPool() *pgxpool.Pool { return s.pool }

func (s *Store) ListenChannel() string { return "upspr_data_change" }

// LoadActiveCampaigns loads every active campaign with its JSON config.
func (s *Store) LoadActiveCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, campaign_type, status, priority, config
		FROM campaigns
		WHERE status = 'active'
		ORDER BY priority DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	var out []campaign.Campaign
	for rows.Next() {
		var (
			id, ctype, status string
			priority          int
			raw               []byte
		)
		if err := rows.Scan(&id, &ctype, &status, &priority, &raw); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		var c campaign.Campaign
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("decode campaign %s config: %w", id, err)
			}
		}
		c.ID = id
		c.Type = ctype
		c.Status = status
		c.Priority = priority
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCampaign persists a campaign, minting its id.
func (s *Store) CreateCampaign(ctx context.Context, c campaign.Campaign) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c.ID = uuid.NewString()
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode campaign config: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO campaigns (id, campaign_type, status, priority, config)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.Type, c.Status, c.Priority, raw)
	if err != nil {
		return "", fmt.Errorf("insert campaign: %w", err)
	}
	return c.ID, nil
}

func (s *Store) listTerms(ctx context.Context, table string) ([]namecache.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT id::text, name, slug, product_count
		FROM %s
		ORDER BY name
	`, table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []namecache.Entry
	for rows.Next() {
		var e namecache.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Slug, &e.Count); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context) ([]namecache.Entry, error) {
	return s.listTerms(ctx, "product_categories")
}

func (s *Store) ListTags(ctx context.Context) ([]namecache.Entry, error) {
	return s.listTerms(ctx, "product_tags")
}

func (s *Store) ListBrands(ctx context.Context) ([]namecache.Entry, error) {
	return s.listTerms(ctx, "product_brands")
}

func (s *Store) ListAttributes(ctx context.Context) ([]namecache.Entry, error) {
	return s.listTerms(ctx, "product_attributes")
}

func (s *Store) ListCountries(ctx context.Context) ([]namecache.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT code, name FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	var out []namecache.Entry
	for rows.Next() {
		var e namecache.Entry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListStates returns states scoped to the given countries; entry ids are
// composite "{countryCode}:{stateCode}".
func (s *Store) ListStates(ctx context.Context, countryCodes []string) ([]namecache.Entry, error) {
	if len(countryCodes) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT country_code, code, name
		FROM states
		WHERE country_code = ANY($1)
		ORDER BY name
	`, countryCodes)
	if err != nil {
		return nil, fmt.Errorf("query states: %w", err)
	}
	defer rows.Close()

	var out []namecache.Entry
	for rows.Next() {
		var country, code, name string
		if err := rows.Scan(&country, &code, &name); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		out = append(out, namecache.Entry{
			ID:      country + ":" + code,
			Name:    name,
			Country: country,
		})
	}
	return out, rows.Err()
}

func (s *Store) ProductsByIDs(ctx context.Context, ids []string) ([]namecache.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, name, COALESCE(sku, '')
		FROM products
		WHERE id::text = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []namecache.Entry
	for rows.Next() {
		var e namecache.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Slug); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LoadCatalog loads the full product catalog for the selection snapshot.
func (s *Store) LoadCatalog(ctx context.Context) ([]engine.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, name, url, COALESCE(image_url, ''), price,
		       COALESCE(rating, 0), COALESCE(primary_category, ''),
		       category_ids, tag_ids, brand_ids, attribute_ids, keywords,
		       product_type, stock_status, stock_qty, on_sale, featured,
		       sales_30d, created_at
		FROM products
		WHERE status = 'publish'
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var out []engine.Product
	for rows.Next() {
		var p engine.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.URL, &p.Image, &p.Price,
			&p.Rating, &p.Category,
			&p.Categories, &p.Tags, &p.Brands, &p.Attributes, &p.Keywords,
			&p.Type, &p.StockStatus, &p.StockQty, &p.OnSale, &p.Featured,
			&p.Sales30d, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
