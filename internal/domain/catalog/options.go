package catalog

import "strings"

const CategoryAll = "All"

var (
	Categories = []string{CategoryAll, "Men's", "Women's", "Unisex"}
	Colors     = []string{"White", "Black", "Navy", "Gray", "Red", "Orange", "Yellow", "Green", "Blue", "Pink"}
	Sizes      = []string{"XS", "S", "M", "L", "XL", "2XL"}
)

// FilterByCategory keeps products in category; "All" and "" keep everything.
func FilterByCategory(products []*Product, category string) []*Product {
	category = strings.TrimSpace(category)
	if category == "" || category == CategoryAll {
		return products
	}
	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if p != nil && p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func IsKnownColor(c string) bool { return contains(Colors, c) }
func IsKnownSize(s string) bool  { return contains(Sizes, s) }

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
