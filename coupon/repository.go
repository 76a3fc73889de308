package coupon

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/driver"
	"github.com/DevWael/google-review-incentive/models"
)

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, coupon *models.Coupon) error
	GetByCode(ctx context.Context, tx pgx.Tx, code string) (*models.Coupon, error)
	ExistsByCode(ctx context.Context, tx pgx.Tx, code string) (bool, error)
	DeleteByCode(ctx context.Context, tx pgx.Tx, code string) error
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

func (r *repository) Create(ctx context.Context, tx pgx.Tx, coupon *models.Coupon) error {

	query := `
    INSERT INTO coupons (id, code, discount_type, amount, expires_at, email_restrictions, usage_limit, usage_limit_per_user, individual_use, description, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `

	_, err := tx.Exec(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.DiscountType,
		coupon.Amount,
		coupon.ExpiresAt,
		coupon.EmailRestrictions,
		coupon.UsageLimit,
		coupon.UsageLimitPerUser,
		coupon.IndividualUse,
		coupon.Description,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("error creating coupon", zap.String("code", coupon.Code), zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) GetByCode(ctx context.Context, tx pgx.Tx, code string) (*models.Coupon, error) {

	query := `
    SELECT id, code, discount_type, amount, expires_at, email_restrictions, usage_limit, usage_limit_per_user, individual_use, description, created_at, updated_at
    FROM coupons WHERE code = $1
    `

	coupon := &models.Coupon{}
	err := tx.QueryRow(ctx, query, code).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountType,
		&coupon.Amount,
		&coupon.ExpiresAt,
		&coupon.EmailRestrictions,
		&coupon.UsageLimit,
		&coupon.UsageLimitPerUser,
		&coupon.IndividualUse,
		&coupon.Description,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
	)
	if err != nil {
		if err != pgx.ErrNoRows {
			r.logger.Error("error getting coupon by code", zap.String("code", code), zap.Error(err))
		}
		return nil, err
	}

	return coupon, nil
}

func (r *repository) ExistsByCode(ctx context.Context, tx pgx.Tx, code string) (bool, error) {

	query := `SELECT EXISTS (SELECT 1 FROM coupons WHERE code = $1)`

	var exists bool
	if err := tx.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		r.logger.Error("error checking coupon code", zap.String("code", code), zap.Error(err))
		return false, err
	}

	return exists, nil
}

func (r *repository) DeleteByCode(ctx context.Context, tx pgx.Tx, code string) error {

	query := `DELETE FROM coupons WHERE code = $1`

	if _, err := tx.Exec(ctx, query, code); err != nil {
		r.logger.Error("error deleting coupon", zap.String("code", code), zap.Error(err))
		return err
	}

	return nil
}
