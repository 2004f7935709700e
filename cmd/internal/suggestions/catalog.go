package suggestions

import "strings"

// Suggestion is one meal offered to the client.
type Suggestion struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	Type        string  `json:"type"`
	CookingTime int     `json:"cookingTime,omitempty"`
	Difficulty  string  `json:"difficulty,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Budget      string  `json:"budget"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url,omitempty"`

	contains []string
}

var catalog = []Suggestion{
	{
		ID:          "1",
		Name:        "Spaghetti Carbonara",
		Image:       "https://images.unsplash.com/photo-1612874742237-6526221588e3?w=500",
		Type:        "recipe",
		CookingTime: 25,
		Difficulty:  "Easy",
		Rating:      4.5,
		Description: "Classic Italian pasta with eggs, cheese, and bacon",
		URL:         "https://example.com/recipe/carbonara",
		contains:    []string{"meat", "pork", "eggs", "dairy", "gluten"},
	},
	{
		ID:          "2",
		Name:        "Caesar Salad",
		Image:       "https://images.unsplash.com/photo-1546793665-c74683f339c1?w=500",
		Type:        "recipe",
		CookingTime: 15,
		Difficulty:  "Easy",
		Rating:      4.2,
		Description: "Fresh romaine lettuce with Caesar dressing",
		URL:         "https://example.com/recipe/caesar-salad",
		contains:    []string{"fish", "eggs", "dairy", "gluten"},
	},
	{
		ID:          "3",
		Name:        "Chicken Stir Fry",
		Image:       "https://images.unsplash.com/photo-1603894584373-5ac82b2ae398?w=500",
		Type:        "recipe",
		CookingTime: 20,
		Difficulty:  "Medium",
		Rating:      4.7,
		Description: "Quick and healthy chicken with vegetables",
		URL:         "https://example.com/recipe/stir-fry",
		contains:    []string{"meat", "soy"},
	},
}

// excludes maps a restriction or allergy to the ingredient groups it rules out.
// Unknown restrictions rule out nothing.
var excludes = map[string][]string{
	"vegetarian":  {"meat", "pork", "fish", "shellfish"},
	"vegan":       {"meat", "pork", "fish", "shellfish", "eggs", "dairy"},
	"pescatarian": {"meat", "pork"},
	"halal":       {"pork"},
	"kosher":      {"pork", "shellfish"},
	"gluten-free": {"gluten"},
	"dairy-free":  {"dairy"},
	"lactose":     {"dairy"},
	"nut-free":    {"nuts", "peanuts"},
	"eggs":        {"eggs"},
	"egg":         {"eggs"},
	"dairy":       {"dairy"},
	"milk":        {"dairy"},
	"gluten":      {"gluten"},
	"wheat":       {"gluten"},
	"soy":         {"soy"},
	"fish":        {"fish"},
	"shellfish":   {"shellfish"},
	"nuts":        {"nuts"},
	"peanuts":     {"peanuts"},
	"peanut":      {"peanuts"},
}

// match returns the catalog entries compatible with restrictions, priced at budget.
func match(budget string, restrictions []string) []Suggestion {
	banned := make(map[string]struct{})
	for _, r := range restrictions {
		for _, group := range excludes[normalizeTag(r)] {
			banned[group] = struct{}{}
		}
	}

	out := make([]Suggestion, 0, len(catalog))
	for _, s := range catalog {
		if conflicts(s, banned) {
			continue
		}
		s.Budget = budget
		s.contains = nil
		out = append(out, s)
	}
	return out
}

func conflicts(s Suggestion, banned map[string]struct{}) bool {
	for _, c := range s.contains {
		if _, ok := banned[c]; ok {
			return true
		}
	}
	return false
}

func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	return s
}

// mergeTags unions the lists, dropping blanks and duplicates, keeping first-seen order.
func mergeTags(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, l := range lists {
		for _, v := range l {
			k := normalizeTag(v)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
