package domain

import "strings"

// DefaultCategory is fetched at startup when nothing else is configured.
const DefaultCategory = "general"

// Categories lists the headline categories in navigation order.
var Categories = []string{
	"general",
	"business",
	"technology",
	"entertainment",
	"sports",
	"science",
	"health",
}

// IsCategory reports whether name is a known headline category.
func IsCategory(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// CategoryIndex returns the navigation position of name, or -1.
func CategoryIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, c := range Categories {
		if c == name {
			return i
		}
	}
	return -1
}
