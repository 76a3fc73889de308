package order

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/driver"
	"github.com/DevWael/google-review-incentive/models"
)

// Meta keys the incentive flow writes into the order's metadata bag.
const (
	MetaReviewToken   = "_gri_review_token"
	MetaCustomerEmail = "_gri_customer_email"
)

type Service interface {
	GetByID(ctx context.Context, id uint64) (*models.Order, error)
	GetMeta(ctx context.Context, orderID uint64, key string) (string, error)
	SetMeta(ctx context.Context, orderID uint64, key, value string) error
	AnnotateReviewToken(ctx context.Context, orderID uint64, token, email string) error
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

func (s *service) GetByID(ctx context.Context, id uint64) (*models.Order, error) {
	var order *models.Order
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = s.repo.GetByID(ctx, tx, id)
		if err == pgx.ErrNoRows {
			order = nil
			return nil
		}
		return err
	})
	return order, err
}

func (s *service) GetMeta(ctx context.Context, orderID uint64, key string) (string, error) {
	var value string
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		value, err = s.repo.GetMeta(ctx, tx, orderID, key)
		return err
	})
	return value, err
}

func (s *service) SetMeta(ctx context.Context, orderID uint64, key, value string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.SetMeta(ctx, tx, orderID, key, value)
	})
}

// AnnotateReviewToken persists the issued tag and the email it was issued
// for in one transaction, so click-time verification never sees one
// without the other.
func (s *service) AnnotateReviewToken(ctx context.Context, orderID uint64, token, email string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.SetMeta(ctx, tx, orderID, MetaReviewToken, token); err != nil {
			return err
		}
		return s.repo.SetMeta(ctx, tx, orderID, MetaCustomerEmail, email)
	})
}
