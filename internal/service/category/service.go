package category

import (
	"context"
	"regexp"
	"strings"

	"figurinha-studio/internal/domain"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	Update(ctx context.Context, c domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

// catalog is the pack listing whose category links change with category writes.
type catalog interface {
	List(ctx context.Context, categoryID string) ([]domain.Pack, error)
	Invalidate(ctx context.Context)
}

type Service struct {
	repo  categoryRepo
	packs catalog
}

func New(repo categoryRepo, packs catalog) *Service {
	return &Service{repo: repo, packs: packs}
}

type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

// ListWithCounts returns the "all" entry followed by every category with its sticker count.
func (s *Service) ListWithCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	packs, err := s.packs.List(ctx, domain.AllCategoryID)
	if err != nil {
		return nil, err
	}
	return domain.CategoryCounts(categories, packs), nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Category, error) {
	c, err := categoryFromInput(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Category, error) {
	c, err := categoryFromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	s.packs.Invalidate(ctx)
	return updated, nil
}

// Delete removes the category and its pack links. Packs themselves are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.packs.Invalidate(ctx)
	return nil
}

func categoryFromInput(in Input) (domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Category{}, domain.Invalid("name required")
	}
	if strings.EqualFold(name, domain.AllCategoryID) {
		return domain.Category{}, domain.Invalid("name is reserved")
	}
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = domain.DefaultCategoryColor
	}
	if !colorPattern.MatchString(color) {
		return domain.Category{}, domain.Invalid("color must be a #rrggbb hex value")
	}
	return domain.Category{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
	}, nil
}
