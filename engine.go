package incentive

import (
	"context"

	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/claim"
	"github.com/DevWael/google-review-incentive/config"
	"github.com/DevWael/google-review-incentive/coupon"
	"github.com/DevWael/google-review-incentive/customer"
	"github.com/DevWael/google-review-incentive/models"
	"github.com/DevWael/google-review-incentive/notification"
	"github.com/DevWael/google-review-incentive/review"
)

const metaKeyPrefix = "_gri_"

type ReviewIncentive struct {
	dispatcher *Dispatcher
	logger     *zap.Logger

	review    review.Service
	ledger    claim.Ledger
	guests    claim.GuestStore
	coupons   coupon.Service
	customers customer.Service
	scheduler notification.Scheduler
	notifier  notification.Notifier
}

func NewReviewIncentive(
	cfg *config.Config,
	rs review.Service,
	ledger claim.Ledger,
	guests claim.GuestStore,
	coupons coupon.Service,
	customers customer.Service,
	scheduler notification.Scheduler,
	notifier notification.Notifier,
	logger *zap.Logger,
) Incentive {
	ri := &ReviewIncentive{
		review:    rs,
		ledger:    ledger,
		guests:    guests,
		coupons:   coupons,
		customers: customers,
		scheduler: scheduler,
		notifier:  notifier,
		logger:    logger,
	}

	ri.dispatcher = NewDispatcher(4, 256, ri)
	ri.dispatcher.Run()

	return ri
}

func (ri *ReviewIncentive) GenerateReviewLink(ctx context.Context, orderID uint64) (*models.ReviewLink, error) {
	return ri.review.ReviewLink(ctx, orderID)
}

func (ri *ReviewIncentive) HandleReviewClick(ctx context.Context, req models.ClickRequest) review.Outcome {
	return ri.review.HandleClick(ctx, req)
}

func (ri *ReviewIncentive) SendCouponEmail(ctx context.Context, email, couponCode string) error {
	return ri.notifier.Execute(ctx, email, couponCode)
}

func (ri *ReviewIncentive) GuestCouponCode(ctx context.Context, email string) (string, error) {
	guestClaim, err := ri.ledger.GuestClaim(ctx, email)
	if err != nil || guestClaim == nil {
		return "", err
	}
	return guestClaim.CouponCode, nil
}

func (ri *ReviewIncentive) ResetCustomer(ctx context.Context, email string) error {
	c, err := ri.customers.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	identity := models.GuestIdentity(email)
	if c != nil {
		identity = models.RegisteredIdentity(c)
	}

	return ri.ledger.Reset(ctx, identity)
}

func (ri *ReviewIncentive) Cleanup(ctx context.Context) error {

	if err := ri.scheduler.CancelAll(ctx); err != nil {
		return err
	}

	// Issued codes live in two places: registered customers' meta and the
	// guest mapping.
	codes, err := ri.customers.ListMetaValues(ctx, claim.MetaCouponCode)
	if err != nil {
		return err
	}

	guestClaims, err := ri.guests.All(ctx)
	if err != nil {
		return err
	}
	for _, guestClaim := range guestClaims {
		if guestClaim.CouponCode != "" {
			codes = append(codes, guestClaim.CouponCode)
		}
	}

	for _, code := range codes {
		if err = ri.coupons.DeleteByCode(ctx, code); err != nil {
			ri.logger.Error("failed to delete coupon during cleanup",
				zap.String("code", code),
				zap.Error(err))
		}
	}

	if err = ri.customers.DeleteMetaByPrefix(ctx, metaKeyPrefix); err != nil {
		return err
	}

	return ri.guests.Clear(ctx)
}

func (ri *ReviewIncentive) Close() {
	ri.dispatcher.Stop()
}
