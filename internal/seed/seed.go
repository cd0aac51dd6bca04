package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"figurinha-studio/internal/domain"
	packrepo "figurinha-studio/internal/repository/pack"
	userrepo "figurinha-studio/internal/repository/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Admin is the account created or promoted by Apply. Empty email skips it.
type Admin struct {
	Email    string
	Password string
	FullName string
}

type categorySeed struct {
	Name        string
	Description string
	Color       string
}

type packSeed struct {
	Name        string
	Description string
	Price       string
	Quantity    int
	Images      []string
	Categories  []string
	Featured    bool
	New         bool
}

var categories = []categorySeed{
	{Name: "Memes", Description: "Figurinhas de memes brasileiros", Color: "#f59e0b"},
	{Name: "Animais", Description: "Gatos, cachorros e afins", Color: "#10b981"},
	{Name: "Frases", Description: "Respostas prontas para o grupo", Color: domain.DefaultCategoryColor},
}

var packs = []packSeed{
	{
		Name:        "Memes Clássicos",
		Description: "Os memes que nunca saem do grupo da família",
		Price:       "9.99",
		Quantity:    30,
		Images:      []string{"/storage/pack-images/demo-memes-1.png", "/storage/pack-images/demo-memes-2.png"},
		Categories:  []string{"Memes", "Frases"},
		Featured:    true,
	},
	{
		Name:        "Gatinhos",
		Description: "Gatos em todas as situações possíveis",
		Price:       "14.99",
		Quantity:    24,
		Images:      []string{"/storage/pack-images/demo-cats-1.png"},
		Categories:  []string{"Animais"},
		New:         true,
	},
}

// Apply inserts demo data for manual testing. Re-running it updates rows in place.
func Apply(ctx context.Context, pool *pgxpool.Pool, admin Admin) error {
	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		id, err := upsertCategory(ctx, pool, c)
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Name, err)
		}
		categoryIDs[c.Name] = id
	}

	repo := packrepo.NewPostgres(pool, nil)
	for _, p := range packs {
		if err := upsertPack(ctx, repo, p, categoryIDs); err != nil {
			return fmt.Errorf("upsert pack %s: %w", p.Name, err)
		}
	}

	if strings.TrimSpace(admin.Email) != "" {
		if err := ensureAdmin(ctx, userrepo.NewPostgres(pool, nil), admin); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}
	return nil
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, c categorySeed) (string, error) {
	const q = `
INSERT INTO categories (name, description, color)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE
SET description = EXCLUDED.description,
    color = EXCLUDED.color
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, c.Name, c.Description, c.Color).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertPack(ctx context.Context, repo packrepo.Repository, s packSeed, categoryIDs map[string]string) error {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return err
	}
	p := domain.Pack{
		Name:        s.Name,
		Description: s.Description,
		Price:       price,
		Quantity:    s.Quantity,
		IsFeatured:  s.Featured,
		IsNew:       s.New,
	}
	for i, u := range s.Images {
		p.Images = append(p.Images, domain.PackImage{ImageURL: u, DisplayOrder: i})
	}
	if len(s.Images) > 0 {
		p.ImageURL = s.Images[0]
	}
	for _, name := range s.Categories {
		if id, ok := categoryIDs[name]; ok {
			p.CategoryIDs = append(p.CategoryIDs, id)
		}
	}

	existing, err := repo.GetByName(ctx, s.Name)
	switch {
	case err == nil:
		p.ID = existing.ID
		p.StickerFilesURL = existing.StickerFilesURL
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	_, err = repo.Save(ctx, p)
	return err
}

func ensureAdmin(ctx context.Context, repo userrepo.Repository, a Admin) error {
	u, err := repo.GetByEmail(ctx, a.Email)
	if errors.Is(err, domain.ErrNotFound) {
		if a.Password == "" {
			return errors.New("admin password required to create the account")
		}
		hash, herr := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if herr != nil {
			return herr
		}
		u, _, err = repo.Create(ctx, domain.User{Email: a.Email, PasswordHash: string(hash)}, a.FullName)
	}
	if err != nil {
		return err
	}
	if err := repo.ConfirmEmail(ctx, u.ID); err != nil {
		return err
	}
	return repo.SetRole(ctx, u.ID, domain.RoleAdmin)
}
