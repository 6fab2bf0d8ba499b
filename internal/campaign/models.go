package campaign

// Campaign is a persisted recommendation rule. The nested config objects map
// 1:1 onto the admin wizard steps and are stored as a single JSON document.
type Campaign struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"` // cross-sell, upsell, related-products, ...
	Status          string          `json:"status"`
	Priority        int             `json:"priority"`
	BasicInfo       BasicInfo       `json:"basic_info"`
	Filters         Filters         `json:"filters"`
	Amplifiers      Amplifiers      `json:"amplifiers"`
	Personalization Personalization `json:"personalization"`
	Visibility      Visibility      `json:"visibility"`
}

// BasicInfo carries naming, placement and widget toggles. The Show* toggles
// are pointers so that an absent field defaults to true, matching how saved
// campaigns from older versions behave.
type BasicInfo struct {
	RuleName           string `json:"ruleName"`
	Description        string `json:"description"`
	RecommendationType string `json:"recommendationType"`
	NumberOfProducts   int    `json:"numberOfProducts"`
	Priority           int    `json:"priority"`
	DisplayLocation    string `json:"displayLocation"`
	HookLocation       string `json:"hookLocation"`

	ShowProductPrices   *bool `json:"showProductPrices,omitempty"`
	ShowProductRatings  *bool `json:"showProductRatings,omitempty"`
	ShowAddToCartButton *bool `json:"showAddToCartButton,omitempty"`
	ShowProductCategory *bool `json:"showProductCategory,omitempty"`
}

func (b BasicInfo) ShowPrices() bool    { return b.ShowProductPrices == nil || *b.ShowProductPrices }
func (b BasicInfo) ShowRatings() bool   { return b.ShowProductRatings == nil || *b.ShowProductRatings }
func (b BasicInfo) ShowAddToCart() bool { return b.ShowAddToCartButton == nil || *b.ShowAddToCartButton }
func (b BasicInfo) ShowCategory() bool  { return b.ShowProductCategory == nil || *b.ShowProductCategory }

// Range is a numeric interval; a nil bound is open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether v falls inside the interval.
func (r *Range) Contains(v float64) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// IntRange is Range for counts.
type IntRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

func (r *IntRange) Contains(v int) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Filters narrows the candidate product set. Identifier slices hold opaque
// term/product ids as strings, the same form the admin UI stores them in.
type Filters struct {
	IncludeCategories []string `json:"includeCategories,omitempty"`
	ExcludeCategories []string `json:"excludeCategories,omitempty"`
	IncludeTags       []string `json:"includeTags,omitempty"`
	Brands            []string `json:"brands,omitempty"`
	Attributes        []string `json:"attributes,omitempty"`
	ExcludeProducts   []string `json:"excludeProducts,omitempty"`

	PriceRange              *Range `json:"priceRange,omitempty"`
	StockStatus             string `json:"stockStatus,omitempty"` // instock, outofstock, onbackorder, "" = any
	ProductType             string `json:"productType,omitempty"`
	ExcludeSaleProducts     bool   `json:"excludeSaleProducts,omitempty"`
	ExcludeFeaturedProducts bool   `json:"excludeFeaturedProducts,omitempty"`
}

// Amplifiers boost the score of matching products; they never admit products
// the filters rejected.
type Amplifiers struct {
	SalesPerformanceBoost bool    `json:"salesPerformanceBoost,omitempty"`
	SalesBoostFactor      float64 `json:"salesBoostFactor,omitempty"`
	SalesTimePeriod       string  `json:"salesTimePeriod,omitempty"`

	InventoryLevelBoost bool   `json:"inventoryLevelBoost,omitempty"`
	InventoryBoostType  string `json:"inventoryBoostType,omitempty"` // high or low
	InventoryThreshold  int    `json:"inventoryThreshold,omitempty"`

	SeasonalTrendingBoost bool     `json:"seasonalTrendingBoost,omitempty"`
	TrendingKeywords      []string `json:"trendingKeywords,omitempty"`
	TrendingDuration      string   `json:"trendingDuration,omitempty"`
}

// Personalization gates a campaign on who the visitor is and where they are.
// State codes are composite "{countryCode}:{stateCode}".
type Personalization struct {
	SelectedCountries []string `json:"selectedCountries,omitempty"`
	SelectedStates    []string `json:"selectedStates,omitempty"`
	CustomerType      string   `json:"customerType,omitempty"` // all, new, returning
	SpendingTier      string   `json:"spendingTier,omitempty"`

	PurchaseHistoryBased   bool    `json:"purchaseHistoryBased,omitempty"`
	PurchaseHistoryWeight  float64 `json:"purchaseHistoryWeight,omitempty"`
	PurchaseHistoryPeriod  string  `json:"purchaseHistoryPeriod,omitempty"`
	BrowsingBehavior       bool    `json:"browsingBehavior,omitempty"`
	RecentlyViewedWeight   float64 `json:"recentlyViewedWeight,omitempty"`
	SearchHistoryWeight    float64 `json:"searchHistoryWeight,omitempty"`
	TimeOnPageWeight       float64 `json:"timeOnPageWeight,omitempty"`
	CollaborativeFiltering bool    `json:"collaborativeFiltering,omitempty"`
	SimilarUsersCount      int     `json:"similarUsersCount,omitempty"`
	SimilarityThreshold    float64 `json:"similarityThreshold,omitempty"`
	CustomerSegmentation   bool    `json:"customerSegmentation,omitempty"`
}

// TimeRange is a daily window in "15:04" clock format.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Visibility gates when and to whom a campaign shows at all.
type Visibility struct {
	StartDate  string     `json:"startDate,omitempty"` // 2006-01-02
	EndDate    string     `json:"endDate,omitempty"`
	DaysOfWeek []string   `json:"daysOfWeek,omitempty"` // lowercase weekday names
	TimeRange  *TimeRange `json:"timeRange,omitempty"`

	DeviceType      string   `json:"deviceType,omitempty"`      // all, desktop, mobile, tablet
	UserLoginStatus string   `json:"userLoginStatus,omitempty"` // all, logged-in, guest
	UserRoles       []string `json:"userRoles,omitempty"`
	MinimumOrders   int      `json:"minimumOrders,omitempty"`
	MinimumSpent    float64  `json:"minimumSpent,omitempty"`

	CartItemsCount           *IntRange `json:"cartItemsCount,omitempty"`
	CartValueRange           *Range    `json:"cartValueRange,omitempty"`
	RequiredProductsInCart   []string  `json:"requiredProductsInCart,omitempty"`
	RequiredCategoriesInCart []string  `json:"requiredCategoriesInCart,omitempty"`
}

// Recommendation is one product as handed to the widget renderer. Price is
// pre-formatted display text; Image and Category are optional.
type Recommendation struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Price    string  `json:"price,omitempty"`
}
