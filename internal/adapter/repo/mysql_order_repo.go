package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sMiccu/shoporder/internal/domain"
	"github.com/sMiccu/shoporder/internal/usecase"
)

// MySQLOrderRepo persists the Order aggregate across the orders,
// order_items and outbox tables. Save runs one transaction: a
// compare-and-set on the version column, an item rewrite, and one outbox
// row per drained domain event. A version mismatch applies nothing.
type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO orders (id, customer_id, status, version, created_at, updated_at)
VALUES (?,?,?,0,?,NOW())`,
		o.ID().String(), o.CustomerID().String(), string(o.Status()), o.CreatedAt())
	return err
}

func (r *MySQLOrderRepo) FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT customer_id, status, version, created_at
FROM orders WHERE id=?`, id.String())

	var (
		rawCustomer string
		rawStatus   string
		version     int64
		createdAt   time.Time
	)
	if err := row.Scan(&rawCustomer, &rawStatus, &version, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", usecase.ErrOrderNotFound, id)
		}
		return nil, err
	}
	customerID, err := domain.ParseCustomerID(rawCustomer)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateOrder(id, customerID, domain.Status(rawStatus), createdAt, version, items), nil
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, id domain.OrderID) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT product_id, quantity, unit_price, currency
FROM order_items WHERE order_id=? ORDER BY line_no`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			rawProduct string
			quantity   int
			rawPrice   string
			currency   string
		)
		if err := rows.Scan(&rawProduct, &quantity, &rawPrice, &currency); err != nil {
			return nil, err
		}
		productID, err := domain.ParseProductID(rawProduct)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return nil, err
		}
		item, err := domain.NewOrderItem(productID, quantity, domain.NewMoney(amount, currency))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MySQLOrderRepo) Save(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Optimistic check: only the row still carrying the loaded version is
	// updated, and the committed version is loaded+1.
	res, err := tx.ExecContext(ctx, `
UPDATE orders SET status=?, version=version+1, updated_at=NOW()
WHERE id=? AND version=?`,
		string(o.Status()), o.ID().String(), o.Version())
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// nothing matched: either the order is gone or someone committed first
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id=?`, o.ID().String()).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", usecase.ErrOrderNotFound, o.ID())
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: order %s version %d", usecase.ErrConcurrencyConflict, o.ID(), o.Version())
	}

	if err := r.rewriteItems(ctx, tx, o); err != nil {
		return err
	}

	// Drain the event buffer into the outbox inside the same transaction,
	// so each event is generated exactly once per commit.
	for _, ev := range o.PullEvents() {
		payload, err := json.Marshal(eventMsg(ev))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO outbox (routing_key, payload, status, retry_count, next_attempt_at, created_at)
VALUES (?,?,'PENDING',0,NOW(),NOW())`, ev.Name(), payload); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) rewriteItems(ctx context.Context, tx *sql.Tx, o *domain.Order) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id=?`, o.ID().String()); err != nil {
		return err
	}
	for i, item := range o.Items() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO order_items (order_id, line_no, product_id, quantity, unit_price, currency)
VALUES (?,?,?,?,?,?)`,
			o.ID().String(), i, item.ProductID().String(), item.Quantity(),
			item.UnitPrice().Amount().String(), item.UnitPrice().Currency()); err != nil {
			return err
		}
	}
	return nil
}

// eventMsg flattens a domain event into its outbox wire shape.
func eventMsg(ev domain.Event) usecase.OrderEventMsg {
	msg := usecase.OrderEventMsg{
		Event: ev.Name(),
		At:    ev.OccurredAt().UTC().Format(time.RFC3339Nano),
	}
	switch e := ev.(type) {
	case domain.OrderConfirmed:
		msg.OrderID = e.OrderID.String()
		msg.Total = e.Total.Amount().String()
		msg.Currency = e.Total.Currency()
	case domain.OrderCancelled:
		msg.OrderID = e.OrderID.String()
	}
	return msg
}

var _ usecase.OrderRepository = (*MySQLOrderRepo)(nil)
