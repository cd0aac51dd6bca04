package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPackCategoryLabel is the legacy label for packs saved without categories.
const DefaultPackCategoryLabel = "Diversos"

// Pack is a purchasable bundle of stickers.
type Pack struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	CategoryIDs     []string        `json:"categoryIds"`
	Quantity        int             `json:"quantity"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	Images          []PackImage     `json:"images"`
	StickerFilesURL *string         `json:"-"`
	PaymentLink     *string         `json:"-"`
	IsFeatured      bool            `json:"isFeatured"`
	IsNew           bool            `json:"isNew"`
	CreatedBy       *string         `json:"createdBy,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// PackImage is one entry of a pack's ordered gallery.
type PackImage struct {
	ID           string `json:"id"`
	ImageURL     string `json:"imageUrl"`
	DisplayOrder int    `json:"displayOrder"`
}

// HasArchive reports whether a fulfillment archive is attached.
func (p Pack) HasArchive() bool {
	return p.StickerFilesURL != nil && *p.StickerFilesURL != ""
}

// InCategory reports whether the pack is linked to the given category id.
func (p Pack) InCategory(categoryID string) bool {
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// FilterPacks keeps packs linked to categoryID. An empty id or AllCategoryID keeps everything.
func FilterPacks(packs []Pack, categoryID string) []Pack {
	if categoryID == "" || categoryID == AllCategoryID {
		return packs
	}
	out := make([]Pack, 0, len(packs))
	for _, p := range packs {
		if p.InCategory(categoryID) {
			out = append(out, p)
		}
	}
	return out
}
