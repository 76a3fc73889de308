package review

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/claim"
	"github.com/DevWael/google-review-incentive/config"
	"github.com/DevWael/google-review-incentive/coupon"
	"github.com/DevWael/google-review-incentive/customer"
	"github.com/DevWael/google-review-incentive/models"
	"github.com/DevWael/google-review-incentive/notification"
	"github.com/DevWael/google-review-incentive/order"
	"github.com/DevWael/google-review-incentive/token"
)

// ActionMarker is the query value identifying a review-link click.
const ActionMarker = "review_click"

const reviewURLFormat = "https://search.google.com/local/writereview?placeid=%s"

// Rejection messages. Malformed requests and integrity failures are
// deliberately indistinguishable beyond "link" vs "order" wording, so the
// endpoint leaks nothing about which check failed.
const (
	msgInvalidLink      = "Invalid review link."
	msgInvalidOrExpired = "Invalid or expired review link."
	msgPlaceIDMissing   = "Google Place ID is not configured."
)

var (
	ErrPlaceIDNotConfigured = errors.New("google place id is not configured")
	ErrNoBillingEmail       = errors.New("order has no billing email")
	ErrOrderNotFound        = errors.New("order not found")
)

type Service interface {
	// HandleClick runs the whole click workflow and always terminates in
	// an Outcome; no internal error escapes to the caller.
	HandleClick(ctx context.Context, req models.ClickRequest) Outcome
	// ReviewLink issues a signed tracking link for the order-completion
	// email. Returns claim.ErrAlreadyClaimed when the customer already
	// used their reward, so the email simply omits the link.
	ReviewLink(ctx context.Context, orderID uint64) (*models.ReviewLink, error)
}

type service struct {
	orders    order.Service
	customers customer.Service
	codec     *token.Codec
	ledger    claim.Ledger
	issuer    coupon.Service
	scheduler notification.Scheduler
	cfg       *config.Config
	logger    *zap.Logger
}

func NewService(
	orders order.Service,
	customers customer.Service,
	codec *token.Codec,
	ledger claim.Ledger,
	issuer coupon.Service,
	scheduler notification.Scheduler,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	return &service{
		orders:    orders,
		customers: customers,
		codec:     codec,
		ledger:    ledger,
		issuer:    issuer,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *service) HandleClick(ctx context.Context, req models.ClickRequest) Outcome {

	if req.Action != ActionMarker || req.OrderID == 0 || req.Token == "" {
		return RejectOutcome(msgInvalidLink)
	}

	ord, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil || ord == nil {
		return RejectOutcome(msgInvalidOrExpired)
	}

	// Only values re-derived from verified order metadata flow downstream;
	// the request's own parameters are never trusted past this point.
	storedToken, err := s.orders.GetMeta(ctx, ord.ID, order.MetaReviewToken)
	if err != nil {
		return RejectOutcome(msgInvalidOrExpired)
	}
	storedEmail, err := s.orders.GetMeta(ctx, ord.ID, order.MetaCustomerEmail)
	if err != nil {
		return RejectOutcome(msgInvalidOrExpired)
	}
	if storedToken == "" || storedEmail == "" || !s.codec.Verify(storedToken, req.Token) {
		return RejectOutcome(msgInvalidOrExpired)
	}

	identity := s.resolveIdentity(ctx, storedEmail)

	claimed, err := s.ledger.HasClaimed(ctx, identity)
	if err != nil {
		// Fail open toward UX, closed toward the reward: send the customer
		// on without touching the ledger or issuing anything.
		s.logger.Error("claim lookup failed", zap.String("email", identity.Email), zap.Error(err))
		return s.redirect()
	}
	if claimed {
		// Idempotent replay: no error, no duplicate coupon.
		return s.redirect()
	}

	// Registered customers are recorded at click time, before issuance;
	// guests only once a coupon exists. Inherited policy.
	if identity.Kind == models.IdentityRegistered {
		if err = s.ledger.RecordClaim(ctx, identity, ""); err != nil && !errors.Is(err, claim.ErrAlreadyClaimed) {
			s.logger.Error("failed to record customer claim",
				zap.Uint64("customer_id", identity.Customer.ID),
				zap.Error(err))
		}
	}

	if s.cfg.Incentive.EnableCoupon {
		s.issueAndSchedule(ctx, identity, ord)
	}

	return s.redirect()
}

func (s *service) issueAndSchedule(ctx context.Context, identity models.Identity, ord *models.Order) {

	code, err := s.issuer.Issue(ctx, identity, ord)
	if err != nil {
		// Logged, not fatal: the customer still gets redirected.
		s.logger.Error("coupon issuance failed",
			zap.String("email", identity.Email),
			zap.Uint64("order_id", ord.ID),
			zap.Error(err))
		return
	}

	if identity.Kind == models.IdentityGuest {
		if err = s.ledger.RecordClaim(ctx, identity, code); err != nil {
			if errors.Is(err, claim.ErrAlreadyClaimed) {
				// Lost a concurrent duplicate-click race; the extra coupon
				// is the documented bounded failure mode.
				s.logger.Warn("duplicate guest claim detected after issuance",
					zap.String("email", identity.Email),
					zap.String("code", code))
			} else {
				s.logger.Error("failed to record guest claim",
					zap.String("email", identity.Email),
					zap.Error(err))
			}
		}
	}

	delay := time.Duration(s.cfg.Incentive.EmailDelayMinutes) * time.Minute
	n := &models.ScheduledNotification{
		ID:         uuid.New(),
		Email:      identity.Email,
		CouponCode: code,
		FireAt:     time.Now().Add(delay),
	}
	if err = s.scheduler.Schedule(ctx, n); err != nil {
		s.logger.Error("failed to schedule coupon email",
			zap.String("email", identity.Email),
			zap.String("code", code),
			zap.Error(err))
		return
	}

	s.logger.Info("scheduled coupon email",
		zap.String("email", identity.Email),
		zap.String("code", code),
		zap.Time("fire_at", n.FireAt))
}

func (s *service) resolveIdentity(ctx context.Context, email string) models.Identity {
	c, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("customer lookup failed, treating claimant as guest",
			zap.Error(err))
		return models.GuestIdentity(email)
	}
	if c != nil {
		return models.RegisteredIdentity(c)
	}
	return models.GuestIdentity(email)
}

func (s *service) redirect() Outcome {
	placeID := s.cfg.Incentive.GooglePlaceID
	if placeID == "" {
		// The one operator-actionable rejection.
		return RejectOutcome(msgPlaceIDMissing)
	}
	return RedirectOutcome(fmt.Sprintf(reviewURLFormat, url.QueryEscape(placeID)))
}
