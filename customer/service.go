package customer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/driver"
	"github.com/DevWael/google-review-incentive/models"
)

type Service interface {
	// GetByEmail returns nil without an error when no customer matches,
	// since an unknown email just means a guest identity.
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetMeta(ctx context.Context, customerID uint64, key string) (string, error)
	SetMeta(ctx context.Context, customerID uint64, key, value string) error
	DeleteMeta(ctx context.Context, customerID uint64, keys ...string) error
	DeleteMetaByPrefix(ctx context.Context, prefix string) error
	ListMetaValues(ctx context.Context, key string) ([]string, error)
}

type service struct {
	repo               Repository
	transactionManager *driver.TransactionManager
	logger             *zap.Logger
}

func NewService(repo Repository, tm *driver.TransactionManager, logger *zap.Logger) Service {
	return &service{
		repo:               repo,
		transactionManager: tm,
		logger:             logger,
	}
}

func (s *service) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer *models.Customer
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		customer, err = s.repo.GetByEmail(ctx, tx, email)
		if err == pgx.ErrNoRows {
			customer = nil
			return nil
		}
		return err
	})
	return customer, err
}

func (s *service) GetMeta(ctx context.Context, customerID uint64, key string) (string, error) {
	var value string
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		value, err = s.repo.GetMeta(ctx, tx, customerID, key)
		return err
	})
	return value, err
}

func (s *service) SetMeta(ctx context.Context, customerID uint64, key, value string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.SetMeta(ctx, tx, customerID, key, value)
	})
}

func (s *service) DeleteMeta(ctx context.Context, customerID uint64, keys ...string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.DeleteMeta(ctx, tx, customerID, keys...)
	})
}

func (s *service) DeleteMetaByPrefix(ctx context.Context, prefix string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.DeleteMetaByPrefix(ctx, tx, prefix)
	})
}

func (s *service) ListMetaValues(ctx context.Context, key string) ([]string, error) {
	var values []string
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		values, err = s.repo.ListMetaValues(ctx, tx, key)
		return err
	})
	return values, err
}
