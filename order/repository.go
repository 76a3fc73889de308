package order

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/driver"
	"github.com/DevWael/google-review-incentive/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Order, error)
	GetMeta(ctx context.Context, tx pgx.Tx, orderID uint64, key string) (string, error)
	SetMeta(ctx context.Context, tx pgx.Tx, orderID uint64, key, value string) error
}

type repository struct {
	conn   driver.PostgresPool
	logger *zap.Logger
}

func NewRepository(conn driver.PostgresPool, logger *zap.Logger) Repository {
	return &repository{
		conn:   conn,
		logger: logger,
	}
}

func (r *repository) GetByID(ctx context.Context, tx pgx.Tx, id uint64) (*models.Order, error) {

	query := `SELECT id, billing_email, status, created_at, updated_at FROM orders WHERE id = $1`

	order := &models.Order{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.BillingEmail,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("error getting order", zap.Uint64("order_id", id), zap.Error(err))
		}
		return nil, err
	}

	return order, nil
}

func (r *repository) GetMeta(ctx context.Context, tx pgx.Tx, orderID uint64, key string) (string, error) {

	query := `SELECT meta_value FROM order_meta WHERE order_id = $1 AND meta_key = $2`

	var value string
	err := tx.QueryRow(ctx, query, orderID, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.logger.Error("error getting order meta", zap.Uint64("order_id", orderID), zap.String("meta_key", key), zap.Error(err))
		return "", err
	}

	return value, nil
}

func (r *repository) SetMeta(ctx context.Context, tx pgx.Tx, orderID uint64, key, value string) error {

	query := `
    INSERT INTO order_meta (order_id, meta_key, meta_value)
    VALUES ($1, $2, $3)
    ON CONFLICT (order_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
    `

	if _, err := tx.Exec(ctx, query, orderID, key, value); err != nil {
		r.logger.Error("error setting order meta", zap.Uint64("order_id", orderID), zap.String("meta_key", key), zap.Error(err))
		return err
	}

	return nil
}
