package pack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"figurinha-studio/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const packColumns = `id::text, name, COALESCE(description, ''), price::text, category, quantity, COALESCE(image_url, ''),
       sticker_files_url, payment_link, is_featured, is_new, created_by::text, created_at, updated_at`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Pack, error) {
	q := `SELECT ` + packColumns + ` FROM sticker_packs ORDER BY created_at DESC`
	packs, err := r.queryPacks(ctx, q)
	if err != nil {
		r.logger.Printf("pack repo: list error=%v", err)
		return nil, err
	}
	if err := r.attachRelations(ctx, packs); err != nil {
		return nil, err
	}
	r.logger.Printf("pack repo: list count=%d", len(packs))
	return packs, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Pack, error) {
	q := `SELECT ` + packColumns + ` FROM sticker_packs WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *postgresRepo) GetByName(ctx context.Context, name string) (*domain.Pack, error) {
	q := `SELECT ` + packColumns + ` FROM sticker_packs WHERE lower(name) = lower($1) ORDER BY created_at ASC LIMIT 1`
	return r.getOne(ctx, q, name)
}

func (r *postgresRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Pack, error) {
	out := make(map[string]domain.Pack, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT ` + packColumns + ` FROM sticker_packs WHERE id = ANY($1::uuid[])`
	packs, err := r.queryPacks(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range packs {
		out[p.ID] = p
	}
	return out, nil
}

// Save creates (empty ID) or updates a pack and replaces its gallery and category links
// in one transaction. The legacy category label follows the first category id.
func (r *postgresRepo) Save(ctx context.Context, p domain.Pack) (*domain.Pack, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	price := domain.MoneyString(p.Price)
	var id string
	if p.ID == "" {
		err = tx.QueryRow(ctx, `
INSERT INTO sticker_packs (name, description, price, quantity, image_url, sticker_files_url, is_featured, is_new, created_by)
VALUES ($1, NULLIF($2, ''), $3::numeric, $4, NULLIF($5, ''), $6, $7, $8, $9)
RETURNING id::text
`, p.Name, p.Description, price, p.Quantity, p.ImageURL, p.StickerFilesURL, p.IsFeatured, p.IsNew, p.CreatedBy).Scan(&id)
	} else {
		err = tx.QueryRow(ctx, `
UPDATE sticker_packs
SET name = $2,
    description = NULLIF($3, ''),
    price = $4::numeric,
    quantity = $5,
    image_url = NULLIF($6, ''),
    sticker_files_url = $7,
    is_featured = $8,
    is_new = $9,
    updated_at = now()
WHERE id = $1
RETURNING id::text
`, p.ID, p.Name, p.Description, price, p.Quantity, p.ImageURL, p.StickerFilesURL, p.IsFeatured, p.IsNew).Scan(&id)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("pack repo: save id=%s error=%v", p.ID, err)
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pack_images WHERE pack_id = $1`, id); err != nil {
		return nil, err
	}
	for i, img := range p.Images {
		if _, err := tx.Exec(ctx, `
INSERT INTO pack_images (pack_id, image_url, display_order)
VALUES ($1, $2, $3)
`, id, img.ImageURL, i); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pack_categories WHERE pack_id = $1`, id); err != nil {
		return nil, err
	}
	for _, categoryID := range p.CategoryIDs {
		if _, err := tx.Exec(ctx, `
INSERT INTO pack_categories (pack_id, category_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, id, categoryID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && (pgErr.Code == "23503" || pgErr.Code == "22P02") {
				return nil, fmt.Errorf("category %s: %w", categoryID, domain.ErrNotFound)
			}
			return nil, err
		}
	}

	var firstCategory *string
	if len(p.CategoryIDs) > 0 {
		firstCategory = &p.CategoryIDs[0]
	}
	if _, err := tx.Exec(ctx, `
UPDATE sticker_packs
SET category = COALESCE((SELECT name FROM categories WHERE id = $2::uuid), $3)
WHERE id = $1
`, id, firstCategory, domain.DefaultPackCategoryLabel); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("pack repo: saved id=%s images=%d categories=%d", id, len(p.Images), len(p.CategoryIDs))
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sticker_packs WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("pack repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("pack repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) getOne(ctx context.Context, q string, args ...interface{}) (*domain.Pack, error) {
	packs, err := r.queryPacks(ctx, q, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(packs) == 0 {
		return nil, domain.ErrNotFound
	}
	if err := r.attachRelations(ctx, packs); err != nil {
		return nil, err
	}
	return &packs[0], nil
}

func (r *postgresRepo) queryPacks(ctx context.Context, q string, args ...interface{}) ([]domain.Pack, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Pack
	for rows.Next() {
		var p domain.Pack
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Category, &p.Quantity, &p.ImageURL,
			&p.StickerFilesURL, &p.PaymentLink, &p.IsFeatured, &p.IsNew, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if p.Price, err = domain.ParseMoney(price); err != nil {
			return nil, err
		}
		p.CategoryIDs = []string{}
		p.Images = []domain.PackImage{}
		result = append(result, p)
	}
	return result, rows.Err()
}

// attachRelations loads gallery images and category ids for the given packs.
func (r *postgresRepo) attachRelations(ctx context.Context, packs []domain.Pack) error {
	if len(packs) == 0 {
		return nil
	}
	index := make(map[string]int, len(packs))
	ids := make([]string, 0, len(packs))
	for i, p := range packs {
		index[p.ID] = i
		ids = append(ids, p.ID)
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, pack_id::text, image_url, display_order
FROM pack_images
WHERE pack_id = ANY($1::uuid[])
ORDER BY pack_id, display_order ASC
`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var img domain.PackImage
		var packID string
		if err := rows.Scan(&img.ID, &packID, &img.ImageURL, &img.DisplayOrder); err != nil {
			rows.Close()
			return err
		}
		i := index[packID]
		packs[i].Images = append(packs[i].Images, img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
SELECT pc.pack_id::text, pc.category_id::text
FROM pack_categories pc
JOIN categories c ON c.id = pc.category_id
WHERE pc.pack_id = ANY($1::uuid[])
ORDER BY c.name ASC
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var packID, categoryID string
		if err := rows.Scan(&packID, &categoryID); err != nil {
			return err
		}
		i := index[packID]
		packs[i].CategoryIDs = append(packs[i].CategoryIDs, categoryID)
	}
	return rows.Err()
}
