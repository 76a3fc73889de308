package incentive

import (
	"context"

	"github.com/DevWael/google-review-incentive/models"
	"github.com/DevWael/google-review-incentive/review"
)

type Incentive interface {
	// GenerateReviewLink issues the signed tracking link embedded in an
	// order-completion email.
	GenerateReviewLink(ctx context.Context, orderID uint64) (*models.ReviewLink, error)

	// HandleReviewClick validates an inbound click and reports where to
	// send the customer. Never returns an error; every failure mode is an
	// Outcome.
	HandleReviewClick(ctx context.Context, req models.ClickRequest) review.Outcome

	// SendCouponEmail executes a due coupon email. Invoked by the worker
	// pool when a scheduled notification fires.
	SendCouponEmail(ctx context.Context, email, couponCode string) error

	// GuestCouponCode recalls the code issued to a guest email, empty when
	// none was issued.
	GuestCouponCode(ctx context.Context, email string) (string, error)

	// ResetCustomer clears every claim record for the identity behind the
	// email, making it eligible again. Administrative use only.
	ResetCustomer(ctx context.Context, email string) error

	// Cleanup removes everything the incentive flow ever created: queued
	// notifications, issued coupons, and claim records. Uninstall
	// semantics.
	Cleanup(ctx context.Context) error

	Close()
}
