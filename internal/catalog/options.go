// internal/catalog/options.go
package catalog

import "github.com/vibing/vibing-client/internal/models"

type Option struct {
	Value string
	Label string
}

// PriceFilter maps a named price band to the API's minPrice/maxPrice.
type PriceFilter struct {
	Value string
	Label string
	Min   *float64
	Max   *float64
}

func price(v float64) *float64 { return &v }

var Categories = []Option{
	{"all", "All Categories"},
	{"libraries", "Libraries & Frameworks"},
	{"cli-tools", "CLI Tools"},
	{"web-templates", "Web Templates"},
	{"mobile", "Mobile Apps"},
	{"desktop", "Desktop Apps"},
	{"design", "Design Assets"},
	{"database", "Database Tools"},
	{"ai-ml", "AI & Machine Learning"},
	{"security", "Security Tools"},
}

var SortOptions = []Option{
	{"newest", "Newest First"},
	{"oldest", "Oldest First"},
	{"price-low", "Price: Low to High"},
	{"price-high", "Price: High to Low"},
	{"popular", "Most Popular"},
	{"rating", "Highest Rated"},
	{"downloads", "Most Downloaded"},
}

var PriceFilters = []PriceFilter{
	{Value: "all", Label: "All Prices"},
	{Value: "free", Label: "Free", Min: price(0), Max: price(0)},
	{Value: "under-10", Label: "Under $10", Min: price(0), Max: price(10)},
	{Value: "10-50", Label: "$10 - $50", Min: price(10), Max: price(50)},
	{Value: "50-100", Label: "$50 - $100", Min: price(50), Max: price(100)},
	{Value: "over-100", Label: "Over $100", Min: price(100)},
}

func validCategory(v string) bool {
	return v == "all" || models.IsProductCategory(v)
}

func validSort(v string) bool {
	for _, o := range SortOptions {
		if o.Value == v {
			return true
		}
	}
	return false
}

func findPriceFilter(v string) (PriceFilter, bool) {
	for _, p := range PriceFilters {
		if p.Value == v {
			return p, true
		}
	}
	return PriceFilter{}, false
}
