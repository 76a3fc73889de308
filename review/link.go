package review

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/DevWael/google-review-incentive/claim"
	"github.com/DevWael/google-review-incentive/models"
)

func (s *service) ReviewLink(ctx context.Context, orderID uint64) (*models.ReviewLink, error) {

	if s.cfg.Incentive.GooglePlaceID == "" {
		return nil, ErrPlaceIDNotConfigured
	}

	ord, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if ord.BillingEmail == "" {
		return nil, ErrNoBillingEmail
	}

	// Customers who already claimed get no link in their email; their
	// second click would only bounce straight to the redirect anyway.
	identity := s.resolveIdentity(ctx, ord.BillingEmail)
	claimed, err := s.ledger.HasClaimed(ctx, identity)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, claim.ErrAlreadyClaimed
	}

	tag := s.codec.Issue(ord.ID, ord.BillingEmail)
	if err = s.orders.AnnotateReviewToken(ctx, ord.ID, tag, ord.BillingEmail); err != nil {
		return nil, fmt.Errorf("failed to annotate order %d: %w", ord.ID, err)
	}

	values := url.Values{}
	values.Set("gri_action", ActionMarker)
	values.Set("order_id", strconv.FormatUint(ord.ID, 10))
	values.Set("token", tag)

	base := strings.TrimRight(s.cfg.Incentive.BaseURL, "/")

	return &models.ReviewLink{
		URL:  base + "/review?" + values.Encode(),
		Text: s.cfg.Incentive.LinkText,
	}, nil
}
