package cart

import (
	"context"
	"errors"

	"figurinha-studio/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// Get loads the user's lines joined with the live pack name, price and cover.
func (r *postgresRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT ci.id::text, ci.pack_id::text, sp.name, sp.price::text, COALESCE(sp.image_url, ''), ci.quantity, ci.created_at
FROM cart_items ci
JOIN sticker_packs sp ON sp.id = ci.pack_id
WHERE ci.user_id = $1
ORDER BY ci.created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := &domain.Cart{UserID: userID, Lines: []domain.CartLine{}}
	for rows.Next() {
		var line domain.CartLine
		var price string
		if err := rows.Scan(&line.ID, &line.PackID, &line.Name, &price, &line.ImageURL, &line.Quantity, &line.CreatedAt); err != nil {
			return nil, err
		}
		if line.Price, err = domain.ParseMoney(price); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddOne inserts the line at quantity 1 or increments an existing one.
func (r *postgresRepo) AddOne(ctx context.Context, userID, packID string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO cart_items (user_id, pack_id, quantity)
VALUES ($1, $2, 1)
ON CONFLICT (user_id, pack_id) DO UPDATE
SET quantity = cart_items.quantity + 1
`, userID, packID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *postgresRepo) SetQuantity(ctx context.Context, userID, packID string, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_items
SET quantity = $3
WHERE user_id = $1 AND pack_id = $2
`, userID, packID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Remove(ctx context.Context, userID, packID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND pack_id = $2`, userID, packID)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
