package pack

import (
	"context"
	"strings"

	"figurinha-studio/internal/domain"
	"github.com/shopspring/decimal"
)

type packRepo interface {
	List(ctx context.Context) ([]domain.Pack, error)
	GetByID(ctx context.Context, id string) (*domain.Pack, error)
	Save(ctx context.Context, p domain.Pack) (*domain.Pack, error)
	Delete(ctx context.Context, id string) error
}

// Cache stores the full pack listing between writes.
type Cache interface {
	Packs(ctx context.Context) ([]domain.Pack, bool)
	StorePacks(ctx context.Context, packs []domain.Pack)
	Invalidate(ctx context.Context)
}

type Service struct {
	repo  packRepo
	cache Cache
}

func New(repo packRepo, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Input is the admin pack form. Images are stored in the given order.
type Input struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	ImageURL        string          `json:"imageUrl"`
	Images          []string        `json:"images"`
	StickerFilesURL string          `json:"stickerFilesUrl"`
	CategoryIDs     []string        `json:"categoryIds"`
	IsFeatured      bool            `json:"isFeatured"`
	IsNew           bool            `json:"isNew"`
}

// List returns packs newest first, filtered by category id ("" or "all" for every pack).
func (s *Service) List(ctx context.Context, categoryID string) ([]domain.Pack, error) {
	packs, ok := s.cachedPacks(ctx)
	if !ok {
		var err error
		if packs, err = s.repo.List(ctx); err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.StorePacks(ctx, packs)
		}
	}
	return domain.FilterPacks(packs, strings.TrimSpace(categoryID)), nil
}

func (s *Service) cachedPacks(ctx context.Context) ([]domain.Pack, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Packs(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Pack, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new pack owned by adminID.
func (s *Service) Create(ctx context.Context, adminID string, in Input) (*domain.Pack, error) {
	p, err := packFromInput(in)
	if err != nil {
		return nil, err
	}
	if adminID != "" {
		p.CreatedBy = &adminID
	}
	return s.save(ctx, p)
}

// Update replaces a pack's fields, gallery and category links.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Pack, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("id required")
	}
	p, err := packFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.save(ctx, p)
}

func (s *Service) save(ctx context.Context, p domain.Pack) (*domain.Pack, error) {
	saved, err := s.repo.Save(ctx, p)
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	return saved, nil
}

// Delete removes a pack. Order history keeps its snapshot of the pack.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached listing; category writes call it too.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func packFromInput(in Input) (domain.Pack, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Pack{}, domain.Invalid("name required")
	}
	if in.Price.IsNegative() {
		return domain.Pack{}, domain.Invalid("price must not be negative")
	}
	if in.Quantity < 0 {
		return domain.Pack{}, domain.Invalid("quantity must not be negative")
	}

	images := make([]domain.PackImage, 0, len(in.Images))
	for _, u := range in.Images {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		images = append(images, domain.PackImage{ImageURL: u, DisplayOrder: len(images)})
	}
	cover := strings.TrimSpace(in.ImageURL)
	if cover == "" && len(images) > 0 {
		cover = images[0].ImageURL
	}

	seen := map[string]struct{}{}
	categoryIDs := make([]string, 0, len(in.CategoryIDs))
	for _, id := range in.CategoryIDs {
		id = strings.TrimSpace(id)
		if id == "" || id == domain.AllCategoryID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		categoryIDs = append(categoryIDs, id)
	}

	p := domain.Pack{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       domain.RoundMoney(in.Price),
		Quantity:    in.Quantity,
		ImageURL:    cover,
		Images:      images,
		CategoryIDs: categoryIDs,
		IsFeatured:  in.IsFeatured,
		IsNew:       in.IsNew,
	}
	if archive := strings.TrimSpace(in.StickerFilesURL); archive != "" {
		p.StickerFilesURL = &archive
	}
	return p, nil
}
