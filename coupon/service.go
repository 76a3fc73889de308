package coupon

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/claim"
	"github.com/DevWael/google-review-incentive/config"
	"github.com/DevWael/google-review-incentive/customer"
	"github.com/DevWael/google-review-incentive/driver"
	"github.com/DevWael/google-review-incentive/models"
	"github.com/DevWael/google-review-incentive/models/enum"
)

const (
	codePrefix = "REVIEW"

	maxCodeAttempts = 5
)

type Service interface {
	// Issue creates a single-use coupon restricted to the claiming email
	// and returns its code. Callers must not schedule a notification when
	// Issue fails.
	Issue(ctx context.Context, identity models.Identity, order *models.Order) (string, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	DeleteByCode(ctx context.Context, code string) error
}

type service struct {
	repo               Repository
	customers          customer.Service
	transactionManager *driver.TransactionManager
	cfg                *config.Config
	logger             *zap.Logger
}

func NewService(repo Repository, customers customer.Service, tm *driver.TransactionManager, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		repo:               repo,
		customers:          customers,
		transactionManager: tm,
		cfg:                cfg,
		logger:             logger,
	}
}

func (s *service) Issue(ctx context.Context, identity models.Identity, order *models.Order) (string, error) {

	email := identity.Email
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid claiming email %q: %w", email, err)
	}

	var code string
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		for attempt := 0; attempt < maxCodeAttempts; attempt++ {
			candidate, err := generateCode(email)
			if err != nil {
				return fmt.Errorf("failed to generate coupon code: %w", err)
			}

			exists, err := s.repo.ExistsByCode(ctx, tx, candidate)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			code = candidate
			break
		}
		if code == "" {
			return fmt.Errorf("exhausted %d attempts generating a unique coupon code", maxCodeAttempts)
		}

		now := time.Now()
		return s.repo.Create(ctx, tx, &models.Coupon{
			ID:                uuid.New(),
			Code:              code,
			DiscountType:      enum.DiscountType(s.cfg.Incentive.CouponType),
			Amount:            decimal.NewFromFloat(s.cfg.Incentive.CouponAmount),
			ExpiresAt:         now.AddDate(0, 0, s.cfg.Incentive.CouponValidityDays),
			EmailRestrictions: []string{email},
			UsageLimit:        1,
			UsageLimitPerUser: 1,
			IndividualUse:     true,
			Description:       fmt.Sprintf("Thank you coupon for %s (Order #%d)", email, order.ID),
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	})
	if err != nil {
		s.logger.Error("failed to generate coupon",
			zap.String("email", email),
			zap.Uint64("order_id", order.ID),
			zap.Error(err))
		return "", err
	}

	// Side effect only: the coupon itself already exists.
	if identity.Kind == models.IdentityRegistered {
		if err = s.customers.SetMeta(ctx, identity.Customer.ID, claim.MetaCouponCode, code); err != nil {
			s.logger.Error("failed to attach coupon code to customer",
				zap.Uint64("customer_id", identity.Customer.ID),
				zap.String("code", code),
				zap.Error(err))
		}
	}

	s.logger.Info("generated coupon",
		zap.String("code", code),
		zap.String("email", email),
		zap.Uint64("order_id", order.ID))

	return code, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon *models.Coupon
	err := s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		coupon, err = s.repo.GetByCode(ctx, tx, code)
		if err == pgx.ErrNoRows {
			coupon = nil
			return nil
		}
		return err
	})
	return coupon, err
}

func (s *service) DeleteByCode(ctx context.Context, code string) error {
	return s.transactionManager.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		return s.repo.DeleteByCode(ctx, tx, code)
	})
}

// generateCode derives "REVIEW-" plus the first 8 upper hex chars of a
// salted hash of the claiming email. Each call salts freshly, so a
// collision is resolved by simply calling again.
func generateCode(email string) (string, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	sum := sha256.Sum256(append([]byte(fmt.Sprintf("%s%d", email, time.Now().UnixNano())), salt...))
	suffix := strings.ToUpper(hex.EncodeToString(sum[:4]))

	return codePrefix + "-" + suffix, nil
}
