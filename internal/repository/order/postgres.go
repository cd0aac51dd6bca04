package order

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

const orderColumns = `o.id::text, o.user_id::text, o.total_amount::text, o.customer_name, o.customer_email, o.customer_phone,
       o.status, o.admin_approved, o.approved_at, o.approved_by::text, o.whatsapp_requested, o.whatsapp_number,
       o.created_at, o.updated_at`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PlaceFromCart empties the user's cart and writes the order snapshot in one transaction.
func (r *postgresRepo) PlaceFromCart(ctx context.Context, userID string, contact domain.Contact) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
WITH removed AS (
    DELETE FROM cart_items
    WHERE user_id = $1
    RETURNING id, pack_id, quantity, created_at
)
SELECT removed.id::text, removed.pack_id::text, sp.name, sp.price::text, COALESCE(sp.image_url, ''), removed.quantity, removed.created_at
FROM removed
JOIN sticker_packs sp ON sp.id = removed.pack_id
ORDER BY removed.created_at ASC
`, userID)
	if err != nil {
		return nil, err
	}
	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		var price string
		if err := rows.Scan(&line.ID, &line.PackID, &line.Name, &price, &line.ImageURL, &line.Quantity, &line.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		if line.Price, err = domain.ParseMoney(price); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	draft, err := domain.DraftFromCart(userID, contact, lines)
	if err != nil {
		return nil, err
	}

	var orderID string
	err = tx.QueryRow(ctx, `
INSERT INTO orders (user_id, total_amount, customer_name, customer_email, customer_phone, status)
VALUES ($1, $2::numeric, $3, $4, $5, 'pending')
RETURNING id::text
`, draft.UserID, domain.MoneyString(draft.TotalAmount), draft.Contact.Name, draft.Contact.Email, draft.Contact.Phone).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	for i, it := range draft.Items {
		_, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, pack_id, quantity, price, sticker_pack_name, sticker_pack_image_url, position)
VALUES ($1, $2, $3, $4::numeric, $5, NULLIF($6, ''), $7)
`, orderID, it.PackID, it.Quantity, domain.MoneyString(it.Price), it.PackName, it.PackImage, i)
		if err != nil {
			return nil, err
		}
	}

	order, err := r.get(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: placed id=%s user_id=%s items=%d total=%s", orderID, userID, len(draft.Items), domain.MoneyString(draft.TotalAmount))
	return order, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.get(ctx, r.pool, id)
}

func (r *postgresRepo) get(ctx context.Context, q querier, id string) (*domain.Order, error) {
	orders, err := r.queryOrders(ctx, q, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return &orders[0], nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`
	orders, err := r.queryOrders(ctx, r.pool, q, userID)
	if err != nil {
		r.logger.Printf("order repo: list user_id=%s error=%v", userID, err)
		return nil, err
	}
	r.logger.Printf("order repo: list user_id=%s count=%d", userID, len(orders))
	return orders, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o ORDER BY o.created_at DESC`
	orders, err := r.queryOrders(ctx, r.pool, q)
	if err != nil {
		r.logger.Printf("order repo: list all error=%v", err)
		return nil, err
	}
	r.logger.Printf("order repo: list all count=%d", len(orders))
	return orders, nil
}

// ListWithoutItems returns orders that have no order_items rows.
func (r *postgresRepo) ListWithoutItems(ctx context.Context) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o
WHERE NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id)
ORDER BY o.created_at ASC`
	return r.queryOrders(ctx, r.pool, q)
}

// Approve sets the payment link on the first item's pack and flags the order approved
// in one transaction. Paid orders cannot be re-approved, and the first item's pack must still exist.
func (r *postgresRepo) Approve(ctx context.Context, orderID, adminID, paymentLink string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if status == domain.OrderStatusPaid {
		return nil, domain.ErrInvalidTransition
	}

	current, err := r.get(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	packID, ok := current.PaymentPackID()
	if !ok {
		return nil, fmt.Errorf("%w: order has no item with a live pack", domain.ErrInvalidTransition)
	}
	if _, err := tx.Exec(ctx, `
UPDATE sticker_packs SET payment_link = $2, updated_at = now() WHERE id = $1
`, packID, paymentLink); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
UPDATE orders
SET admin_approved = true, approved_at = now(), approved_by = $2, updated_at = now()
WHERE id = $1
`, orderID, adminID); err != nil {
		return nil, err
	}

	order, err := r.get(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: approved id=%s by=%s", orderID, adminID)
	return order, nil
}

// MarkPaid moves an approved order to paid. Marking an already paid order is a no-op.
func (r *postgresRepo) MarkPaid(ctx context.Context, orderID string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	var approved bool
	err = tx.QueryRow(ctx, `SELECT status, admin_approved FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status, &approved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	switch {
	case status == domain.OrderStatusPaid:
	case !approved:
		return nil, domain.ErrInvalidTransition
	default:
		if _, err := tx.Exec(ctx, `UPDATE orders SET status = 'paid', updated_at = now() WHERE id = $1`, orderID); err != nil {
			return nil, err
		}
	}

	order, err := r.get(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: paid id=%s", orderID)
	return order, nil
}

// RequestWhatsApp goes through request_order_whatsapp, which enforces ownership and paid status.
func (r *postgresRepo) RequestWhatsApp(ctx context.Context, orderID, userID, number string) error {
	_, err := r.pool.Exec(ctx, `SELECT request_order_whatsapp($1, $2, $3)`, orderID, number, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "P0002", "22P02":
				return domain.ErrNotFound
			case "55000":
				return domain.ErrInvalidTransition
			}
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
SELECT
    (SELECT count(*) FROM sticker_packs),
    (SELECT count(*) FROM profiles),
    (SELECT count(*) FROM orders),
    (SELECT count(*) FROM orders WHERE status = 'pending' AND NOT admin_approved)
`).Scan(&s.Packs, &s.Users, &s.Orders, &s.PendingApprovals)
	return s, err
}

func (r *postgresRepo) queryOrders(ctx context.Context, q querier, sql string, args ...any) ([]domain.Order, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var total string
		if err := rows.Scan(
			&o.ID, &o.UserID, &total, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.Status, &o.AdminApproved, &o.ApprovedAt, &o.ApprovedBy, &o.WhatsAppRequested, &o.WhatsAppNumber,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		if o.TotalAmount, err = domain.ParseMoney(total); err != nil {
			rows.Close()
			return nil, err
		}
		o.Items = []domain.OrderItem{}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, q, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, q querier, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}
	rows, err := q.Query(ctx, `
SELECT id::text, order_id::text, pack_id::text, quantity, price::text, sticker_pack_name,
       COALESCE(sticker_pack_image_url, ''), created_at
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position ASC
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PackID, &it.Quantity, &price, &it.PackName, &it.PackImage, &it.CreatedAt); err != nil {
			return err
		}
		if it.Price, err = domain.ParseMoney(price); err != nil {
			return err
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}
