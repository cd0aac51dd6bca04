package domain

import "time"

// DefaultCategoryColor is applied when a category is saved without a color.
const DefaultCategoryColor = "#8b5cf6"

// AllCategoryID is the synthetic category that matches every pack.
const AllCategoryID = "all"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryCount pairs a category with the number of stickers in its packs.
type CategoryCount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Stickers int    `json:"count"`
}

// CategoryCounts returns the synthetic "all" entry followed by one entry per category.
// Counts are sums of pack sticker quantities, not pack counts.
func CategoryCounts(categories []Category, packs []Pack) []CategoryCount {
	perCategory := make(map[string]int, len(categories))
	total := 0
	for _, p := range packs {
		total += p.Quantity
		for _, id := range p.CategoryIDs {
			perCategory[id] += p.Quantity
		}
	}

	out := make([]CategoryCount, 0, len(categories)+1)
	out = append(out, CategoryCount{ID: AllCategoryID, Name: "All", Stickers: total})
	for _, c := range categories {
		out = append(out, CategoryCount{
			ID:       c.ID,
			Name:     c.Name,
			Color:    c.Color,
			Stickers: perCategory[c.ID],
		})
	}
	return out
}
