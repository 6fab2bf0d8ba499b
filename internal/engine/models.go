package engine

import "time"

// Product is one catalog item in the selection snapshot. Identifier slices
// hold term ids as strings, matching how campaigns store them.
type Product struct {
	ID       string
	Name     string
	URL      string
	Image    string
	Price    float64
	Rating   float64
	Category string // primary category display name

	Categories []string
	Tags       []string
	Brands     []string
	Attributes []string
	Keywords   []string

	Type        string // simple, variable, ...
	StockStatus string // instock, outofstock, onbackorder
	StockQty    int
	OnSale      bool
	Featured    bool
	Sales30d    int
	CreatedAt   time.Time
}

// Visit is the visitor/session context selection and visibility gates run
// against.
type Visit struct {
	Now      time.Time
	Device   string // desktop, mobile, tablet
	LoggedIn bool
	Roles    []string

	Country string // "US"
	State   string // composite "US:NY"

	CustomerType string // new, returning
	SpendingTier string

	CartProducts   []string
	CartCategories []string
	CartItems      int
	CartValue      float64
}
