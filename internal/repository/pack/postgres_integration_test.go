package pack

import (
	"context"
	"errors"
	"testing"

	"figurinha-studio/internal/domain"
	categoryrepo "figurinha-studio/internal/repository/category"
	"figurinha-studio/internal/testdb"
	"github.com/shopspring/decimal"
)

func TestCategoryDeleteKeepsPacks(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	testdb.Reset(t, pool)
	cats := categoryrepo.NewPostgres(pool)
	packs := NewPostgres(pool, nil)

	memes, err := cats.Create(ctx, domain.Category{Name: "Memes", Color: domain.DefaultCategoryColor})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	saved, err := packs.Save(ctx, domain.Pack{
		Name:        "Memes BR",
		Price:       decimal.RequireFromString("9.99"),
		Quantity:    30,
		CategoryIDs: []string{memes.ID},
		Images: []domain.PackImage{
			{ImageURL: "https://img.example.com/1.png"},
			{ImageURL: "https://img.example.com/2.png"},
		},
	})
	if err != nil {
		t.Fatalf("save pack: %v", err)
	}
	if saved.Category != "Memes" || len(saved.Images) != 2 || saved.Images[1].DisplayOrder != 1 {
		t.Fatalf("unexpected saved pack %+v", saved)
	}

	if err := cats.Delete(ctx, memes.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	got, err := packs.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("pack should survive category delete: %v", err)
	}
	if len(got.CategoryIDs) != 0 {
		t.Fatalf("expected no category links, got %v", got.CategoryIDs)
	}
}

func TestSaveRejectsUnknownCategory(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(t)
	testdb.Reset(t, pool)
	packs := NewPostgres(pool, nil)

	_, err := packs.Save(ctx, domain.Pack{
		Name:        "Orphan",
		Price:       decimal.RequireFromString("1.00"),
		CategoryIDs: []string{"00000000-0000-0000-0000-000000000000"},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	list, err := packs.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("failed save must not leave a pack behind, got %d", len(list))
	}
}

func TestGetByIDMalformedIsNotFound(t *testing.T) {
	pool := testdb.Pool(t)
	packs := NewPostgres(pool, nil)
	if _, err := packs.GetByID(context.Background(), "abc"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}
