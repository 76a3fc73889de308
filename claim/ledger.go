package claim

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/customer"
	"github.com/DevWael/google-review-incentive/models"
)

// Meta keys carrying a registered customer's claim state.
const (
	MetaLinkClicked      = "_gri_review_link_clicked"
	MetaClickedTimestamp = "_gri_review_link_clicked_timestamp"
	MetaCouponCode       = "_gri_coupon_code"
	MetaCouponSentDate   = "_gri_coupon_sent_date"
)

var ErrAlreadyClaimed = errors.New("reward already claimed")

// Ledger answers "has this identity already claimed its one reward" and
// records new claims at most once per identity.
//
// The registered side is check-then-set against a plain meta store, so two
// concurrent clicks can slip through the window; the guest side is an
// atomic set-if-absent. The window is bounded (one extra coupon at worst)
// and logged by the orchestrator rather than masked.
type Ledger interface {
	HasClaimed(ctx context.Context, identity models.Identity) (bool, error)
	RecordClaim(ctx context.Context, identity models.Identity, couponCode string) error
	// GuestClaim recalls a guest's recorded claim, nil when none exists.
	GuestClaim(ctx context.Context, email string) (*models.GuestClaim, error)
	Reset(ctx context.Context, identity models.Identity) error
}

type ledger struct {
	customers customer.Service
	guests    GuestStore
	logger    *zap.Logger
}

func NewLedger(customers customer.Service, guests GuestStore, logger *zap.Logger) Ledger {
	return &ledger{
		customers: customers,
		guests:    guests,
		logger:    logger,
	}
}

func (l *ledger) HasClaimed(ctx context.Context, identity models.Identity) (bool, error) {
	if identity.Kind == models.IdentityRegistered {
		flag, err := l.customers.GetMeta(ctx, identity.Customer.ID, MetaLinkClicked)
		if err != nil {
			return false, err
		}
		return flag != "", nil
	}

	_, found, err := l.guests.Get(ctx, identity.Email)
	return found, err
}

func (l *ledger) RecordClaim(ctx context.Context, identity models.Identity, couponCode string) error {

	now := time.Now()

	if identity.Kind == models.IdentityRegistered {
		claimed, err := l.HasClaimed(ctx, identity)
		if err != nil {
			return err
		}
		if claimed {
			return ErrAlreadyClaimed
		}

		if err = l.customers.SetMeta(ctx, identity.Customer.ID, MetaLinkClicked, "1"); err != nil {
			return err
		}
		if err = l.customers.SetMeta(ctx, identity.Customer.ID, MetaClickedTimestamp, strconv.FormatInt(now.Unix(), 10)); err != nil {
			l.logger.Error("failed to record claim timestamp",
				zap.Uint64("customer_id", identity.Customer.ID),
				zap.Error(err))
		}
		return nil
	}

	recorded, err := l.guests.SetIfAbsent(ctx, identity.Email, &models.GuestClaim{
		Timestamp:  now.Unix(),
		CouponCode: couponCode,
	})
	if err != nil {
		return err
	}
	if !recorded {
		return ErrAlreadyClaimed
	}

	return nil
}

func (l *ledger) GuestClaim(ctx context.Context, email string) (*models.GuestClaim, error) {
	claim, found, err := l.guests.Get(ctx, email)
	if err != nil || !found {
		return nil, err
	}
	return claim, nil
}

func (l *ledger) Reset(ctx context.Context, identity models.Identity) error {
	if identity.Kind == models.IdentityRegistered {
		return l.customers.DeleteMeta(ctx, identity.Customer.ID,
			MetaLinkClicked,
			MetaClickedTimestamp,
			MetaCouponCode,
			MetaCouponSentDate,
		)
	}
	return l.guests.Delete(ctx, identity.Email)
}
