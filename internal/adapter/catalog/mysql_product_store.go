package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sMiccu/shoporder/internal/domain"
	"github.com/sMiccu/shoporder/internal/usecase"
)

// MySQLProductStore serves the catalog capability the order core consumes:
// current price, availability, and stock reservation. Reservation is a
// conditional decrement guarded in SQL, so stock has its own concurrency
// control independent of the order version check.
type MySQLProductStore struct{ db *sql.DB }

func NewMySQLProductStore(db *sql.DB) *MySQLProductStore { return &MySQLProductStore{db: db} }

func (s *MySQLProductStore) Price(ctx context.Context, id domain.ProductID) (domain.Money, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT price, currency FROM products WHERE id=?`, id.String())

	var (
		rawPrice string
		currency string
	)
	if err := row.Scan(&rawPrice, &currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Money{}, fmt.Errorf("%w: %s", usecase.ErrProductNotFound, id)
		}
		return domain.Money{}, err
	}
	amount, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.NewMoney(amount, currency), nil
}

func (s *MySQLProductStore) Available(ctx context.Context, id domain.ProductID) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT is_active AND stock_quantity > 0 FROM products WHERE id=?`, id.String())

	var available bool
	if err := row.Scan(&available); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: %s", usecase.ErrProductNotFound, id)
		}
		return false, err
	}
	return available, nil
}

func (s *MySQLProductStore) ReserveStock(ctx context.Context, id domain.ProductID, quantity int) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE products SET stock_quantity = stock_quantity - ?
WHERE id=? AND stock_quantity >= ?`, quantity, id.String(), quantity)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// not found or the guard failed; disambiguate for the caller
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id=?`, id.String()).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", usecase.ErrProductNotFound, id)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: product %s, requested %d", usecase.ErrInsufficientStock, id, quantity)
	}
	return nil
}

// ReleaseStock gives a reservation back, e.g. when an order is cancelled.
func (s *MySQLProductStore) ReleaseStock(ctx context.Context, id domain.ProductID, quantity int) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE products SET stock_quantity = stock_quantity + ?
WHERE id=?`, quantity, id.String())
	return err
}

var _ usecase.ProductCatalog = (*MySQLProductStore)(nil)
