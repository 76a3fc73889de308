package customer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/driver"
	"github.com/DevWael/google-review-incentive/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*models.Customer, error)
	GetMeta(ctx context.Context, tx pgx.Tx, customerID uint64, key string) (string, error)
	SetMeta(ctx context.Context, tx pgx.Tx, customerID uint64, key, value string) error
	DeleteMeta(ctx context.Context, tx pgx.Tx, customerID uint64, keys ...string) error
	DeleteMetaByPrefix(ctx context.Context, tx pgx.Tx, prefix string) error
	ListMetaValues(ctx context.Context, tx pgx.Tx, key string) ([]string, error)
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

func (r *repository) GetByEmail(ctx context.Context, tx pgx.Tx, email string) (*models.Customer, error) {

	query := `SELECT id, email, display_name, created_at, updated_at FROM customers WHERE lower(email) = $1`

	customer := &models.Customer{}
	err := tx.QueryRow(ctx, query, models.NormalizeEmail(email)).Scan(
		&customer.ID,
		&customer.Email,
		&customer.DisplayName,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("error getting customer by email", zap.Error(err))
		}
		return nil, err
	}

	return customer, nil
}

func (r *repository) GetMeta(ctx context.Context, tx pgx.Tx, customerID uint64, key string) (string, error) {

	query := `SELECT meta_value FROM customer_meta WHERE customer_id = $1 AND meta_key = $2`

	var value string
	err := tx.QueryRow(ctx, query, customerID, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.logger.Error("error getting customer meta", zap.Uint64("customer_id", customerID), zap.String("meta_key", key), zap.Error(err))
		return "", err
	}

	return value, nil
}

func (r *repository) SetMeta(ctx context.Context, tx pgx.Tx, customerID uint64, key, value string) error {

	query := `
    INSERT INTO customer_meta (customer_id, meta_key, meta_value)
    VALUES ($1, $2, $3)
    ON CONFLICT (customer_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
    `

	if _, err := tx.Exec(ctx, query, customerID, key, value); err != nil {
		r.logger.Error("error setting customer meta", zap.Uint64("customer_id", customerID), zap.String("meta_key", key), zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) DeleteMeta(ctx context.Context, tx pgx.Tx, customerID uint64, keys ...string) error {

	query := `DELETE FROM customer_meta WHERE customer_id = $1 AND meta_key = ANY($2)`

	if _, err := tx.Exec(ctx, query, customerID, keys); err != nil {
		r.logger.Error("error deleting customer meta", zap.Uint64("customer_id", customerID), zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) DeleteMetaByPrefix(ctx context.Context, tx pgx.Tx, prefix string) error {

	query := `DELETE FROM customer_meta WHERE meta_key LIKE $1 || '%'`

	if _, err := tx.Exec(ctx, query, prefix); err != nil {
		r.logger.Error("error deleting customer meta by prefix", zap.String("prefix", prefix), zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) ListMetaValues(ctx context.Context, tx pgx.Tx, key string) ([]string, error) {

	query := `SELECT meta_value FROM customer_meta WHERE meta_key = $1`

	rows, err := tx.Query(ctx, query, key)
	if err != nil {
		r.logger.Error("error listing customer meta values", zap.String("meta_key", key), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err = rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, rows.Err()
}
