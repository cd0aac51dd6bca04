package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"figurinha-studio/internal/domain"
	"github.com/shopspring/decimal"
)

// Kind is the type of rows a CSV file carries.
type Kind string

const (
	KindPacks      Kind = "packs"
	KindCategories Kind = "categories"
)

type PackWriter interface {
	GetByName(ctx context.Context, name string) (*domain.Pack, error)
	Save(ctx context.Context, p domain.Pack) (*domain.Pack, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// CSVImporter reads pack or category exports and inserts or updates them by name.
type CSVImporter struct {
	reader     *csv.Reader
	packs      PackWriter
	categories CategoryStore
	catIDs     map[string]string
}

func NewCSVImporter(r io.Reader, packs PackWriter, categories CategoryStore) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // continuation rows may be short
	return &CSVImporter{
		reader:     csvr,
		packs:      packs,
		categories: categories,
	}
}

type packRow struct {
	Name            string
	Description     string
	Price           string
	Quantity        string
	ImageURL        string
	StickerFilesURL string
	Categories      []string
	Gallery         []string
}

// DetectKind peeks at the header row.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	idx := headerIndex(headers)
	if _, ok := idx["price"]; ok {
		return KindPacks, nil
	}
	if _, ok := idx["name"]; ok {
		return KindCategories, nil
	}
	return "", errors.New("unrecognised csv header")
}

// Run imports pack rows. A row without a name continues the previous pack's gallery.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *packRow
		imported int
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parsePackRow(record, index)
		if row == nil {
			continue
		}
		if row.Name != "" {
			if current != nil {
				if err := i.savePack(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}
		if current != nil {
			current.Gallery = append(current.Gallery, row.Gallery...)
		}
	}

	if current != nil {
		if err := i.savePack(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// RunCategories imports name,description,color rows. Existing names are left untouched.
func (i *CSVImporter) RunCategories(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		name := pick(record, index, "name")
		if name == "" {
			continue
		}
		color := pick(record, index, "color")
		if color == "" {
			color = domain.DefaultCategoryColor
		}
		if _, err := i.ensureCategory(ctx, domain.Category{
			Name:        name,
			Description: pick(record, index, "description"),
			Color:       color,
		}); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) savePack(ctx context.Context, row *packRow) error {
	price, err := decimal.NewFromString(row.Price)
	if err != nil || price.IsNegative() {
		return fmt.Errorf("invalid price %q for pack %q", row.Price, row.Name)
	}
	quantity := 0
	if row.Quantity != "" {
		if quantity, err = strconv.Atoi(row.Quantity); err != nil || quantity < 0 {
			return fmt.Errorf("invalid quantity %q for pack %q", row.Quantity, row.Name)
		}
	}

	p := domain.Pack{
		Name:        row.Name,
		Description: row.Description,
		Price:       domain.RoundMoney(price),
		Quantity:    quantity,
		ImageURL:    row.ImageURL,
	}
	if row.StickerFilesURL != "" {
		archive := row.StickerFilesURL
		p.StickerFilesURL = &archive
	}
	for _, u := range row.Gallery {
		p.Images = append(p.Images, domain.PackImage{ImageURL: u, DisplayOrder: len(p.Images)})
	}
	if p.ImageURL == "" && len(p.Images) > 0 {
		p.ImageURL = p.Images[0].ImageURL
	}
	for _, name := range row.Categories {
		id, err := i.ensureCategory(ctx, domain.Category{Name: name, Color: domain.DefaultCategoryColor})
		if err != nil {
			return err
		}
		p.CategoryIDs = append(p.CategoryIDs, id)
	}

	existing, err := i.packs.GetByName(ctx, row.Name)
	switch {
	case err == nil:
		p.ID = existing.ID
		p.PaymentLink = existing.PaymentLink
		if p.StickerFilesURL == nil {
			p.StickerFilesURL = existing.StickerFilesURL
		}
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("lookup pack %q: %w", row.Name, err)
	}

	if _, err := i.packs.Save(ctx, p); err != nil {
		return fmt.Errorf("save pack %q: %w", row.Name, err)
	}
	return nil
}

// ensureCategory returns the id of the category with c.Name, creating it when missing.
func (i *CSVImporter) ensureCategory(ctx context.Context, c domain.Category) (string, error) {
	if i.categories == nil {
		return "", errors.New("category store not configured")
	}
	if i.catIDs == nil {
		if err := i.loadCategories(ctx); err != nil {
			return "", err
		}
	}
	key := strings.ToLower(c.Name)
	if id, ok := i.catIDs[key]; ok {
		return id, nil
	}
	created, err := i.categories.Create(ctx, c)
	if errors.Is(err, domain.ErrAlreadyExists) {
		if err := i.loadCategories(ctx); err != nil {
			return "", err
		}
		if id, ok := i.catIDs[key]; ok {
			return id, nil
		}
	}
	if err != nil {
		return "", fmt.Errorf("create category %q: %w", c.Name, err)
	}
	i.catIDs[key] = created.ID
	return created.ID, nil
}

func (i *CSVImporter) loadCategories(ctx context.Context) error {
	cats, err := i.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	i.catIDs = make(map[string]string, len(cats))
	for _, c := range cats {
		i.catIDs[strings.ToLower(c.Name)] = c.ID
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parsePackRow(record []string, index map[string]int) *packRow {
	name := pick(record, index, "name")
	gallery := splitList(pick(record, index, "gallery"))
	if name == "" && len(gallery) == 0 {
		return nil
	}
	return &packRow{
		Name:            name,
		Description:     pick(record, index, "description"),
		Price:           pick(record, index, "price"),
		Quantity:        pick(record, index, "quantity"),
		ImageURL:        pick(record, index, "image_url"),
		StickerFilesURL: pick(record, index, "sticker_files_url"),
		Categories:      splitList(pick(record, index, "categories")),
		Gallery:         gallery,
	}
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
