package review

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/claim"
	"github.com/DevWael/google-review-incentive/config"
	"github.com/DevWael/google-review-incentive/models"
	"github.com/DevWael/google-review-incentive/token"
)

type fakeOrders struct {
	orders map[uint64]*models.Order
	meta   map[uint64]map[string]string

	annotated  []uint64
	getMetaErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders: make(map[uint64]*models.Order),
		meta:   make(map[uint64]map[string]string),
	}
}

func (f *fakeOrders) GetByID(_ context.Context, id uint64) (*models.Order, error) {
	return f.orders[id], nil
}

func (f *fakeOrders) GetMeta(_ context.Context, orderID uint64, key string) (string, error) {
	if f.getMetaErr != nil {
		return "", f.getMetaErr
	}
	return f.meta[orderID][key], nil
}

func (f *fakeOrders) SetMeta(_ context.Context, orderID uint64, key, value string) error {
	if f.meta[orderID] == nil {
		f.meta[orderID] = make(map[string]string)
	}
	f.meta[orderID][key] = value
	return nil
}

func (f *fakeOrders) AnnotateReviewToken(ctx context.Context, orderID uint64, tag, email string) error {
	f.annotated = append(f.annotated, orderID)
	if err := f.SetMeta(ctx, orderID, "_gri_review_token", tag); err != nil {
		return err
	}
	return f.SetMeta(ctx, orderID, "_gri_customer_email", email)
}

type fakeCustomers struct {
	byEmail map[string]*models.Customer
}

func (f *fakeCustomers) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	return f.byEmail[models.NormalizeEmail(email)], nil
}

func (f *fakeCustomers) GetMeta(context.Context, uint64, string) (string, error) { return "", nil }
func (f *fakeCustomers) SetMeta(context.Context, uint64, string, string) error  { return nil }
func (f *fakeCustomers) DeleteMeta(context.Context, uint64, ...string) error    { return nil }
func (f *fakeCustomers) DeleteMetaByPrefix(context.Context, string) error       { return nil }
func (f *fakeCustomers) ListMetaValues(context.Context, string) ([]string, error) {
	return nil, nil
}

type fakeLedger struct {
	claimed map[string]bool

	lookupErr error
	recorded  []models.Identity
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{claimed: make(map[string]bool)}
}

func (f *fakeLedger) HasClaimed(_ context.Context, identity models.Identity) (bool, error) {
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	return f.claimed[identity.Email], nil
}

func (f *fakeLedger) RecordClaim(_ context.Context, identity models.Identity, _ string) error {
	if f.claimed[identity.Email] {
		return claim.ErrAlreadyClaimed
	}
	f.claimed[identity.Email] = true
	f.recorded = append(f.recorded, identity)
	return nil
}

func (f *fakeLedger) GuestClaim(context.Context, string) (*models.GuestClaim, error) {
	return nil, nil
}

func (f *fakeLedger) Reset(_ context.Context, identity models.Identity) error {
	delete(f.claimed, identity.Email)
	return nil
}

type fakeIssuer struct {
	code string
	err  error

	issued []models.Identity
}

func (f *fakeIssuer) Issue(_ context.Context, identity models.Identity, _ *models.Order) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued = append(f.issued, identity)
	return f.code, nil
}

func (f *fakeIssuer) GetByCode(context.Context, string) (*models.Coupon, error) { return nil, nil }
func (f *fakeIssuer) DeleteByCode(context.Context, string) error                { return nil }

type fakeScheduler struct {
	scheduled []*models.ScheduledNotification
}

func (f *fakeScheduler) Schedule(_ context.Context, n *models.ScheduledNotification) error {
	f.scheduled = append(f.scheduled, n)
	return nil
}

func (f *fakeScheduler) PopDue(context.Context, time.Time, int64) ([]*models.ScheduledNotification, error) {
	return nil, nil
}

func (f *fakeScheduler) CancelAll(context.Context) error { return nil }

type fixture struct {
	svc       Service
	orders    *fakeOrders
	customers *fakeCustomers
	ledger    *fakeLedger
	issuer    *fakeIssuer
	scheduler *fakeScheduler
	codec     *token.Codec
	cfg       *config.Config
}

func newFixture() *fixture {
	cfg := &config.Config{
		Incentive: config.IncentiveConfig{
			SecretKey:          "test-secret",
			BaseURL:            "https://shop.example.com",
			EnableCoupon:       true,
			CouponType:         "percent",
			CouponAmount:       15,
			CouponValidityDays: 30,
			EmailDelayMinutes:  60,
			LinkText:           "Share your experience on Google",
			GooglePlaceID:      "ChIJtest123",
		},
	}

	f := &fixture{
		orders:    newFakeOrders(),
		customers: &fakeCustomers{byEmail: make(map[string]*models.Customer)},
		ledger:    newFakeLedger(),
		issuer:    &fakeIssuer{code: "REVIEW-AB12CD34"},
		scheduler: &fakeScheduler{},
		codec:     token.NewCodec(cfg.Incentive.SecretKey),
		cfg:       cfg,
	}
	f.svc = NewService(f.orders, f.customers, f.codec, f.ledger, f.issuer, f.scheduler, cfg, zap.NewNop())
	return f
}

// seedOrder registers an order with a valid signed tag in its metadata and
// returns the click request a legitimate email link would carry.
func (f *fixture) seedOrder(id uint64, email string) models.ClickRequest {
	f.orders.orders[id] = &models.Order{ID: id, BillingEmail: email, Status: "completed"}
	tag := f.codec.Issue(id, email)
	f.orders.meta[id] = map[string]string{
		"_gri_review_token":   tag,
		"_gri_customer_email": email,
	}
	return models.ClickRequest{Action: ActionMarker, OrderID: id, Token: tag}
}

func TestHandleClickFreshGuest(t *testing.T) {
	f := newFixture()
	req := f.seedOrder(101, "guest@example.com")

	before := time.Now()
	outcome := f.svc.HandleClick(context.Background(), req)

	if outcome.Kind != OutcomeRedirect {
		t.Fatalf("expected redirect, got reject: %q", outcome.Message)
	}
	if !strings.Contains(outcome.URL, "placeid=ChIJtest123") {
		t.Errorf("redirect URL missing place id: %s", outcome.URL)
	}

	if len(f.issuer.issued) != 1 {
		t.Fatalf("expected 1 coupon issued, got %d", len(f.issuer.issued))
	}
	if f.issuer.issued[0].Kind != models.IdentityGuest {
		t.Errorf("expected guest identity, got %s", f.issuer.issued[0].Kind)
	}
	if !f.ledger.claimed["guest@example.com"] {
		t.Error("guest claim was not recorded")
	}

	if len(f.scheduler.scheduled) != 1 {
		t.Fatalf("expected 1 scheduled notification, got %d", len(f.scheduler.scheduled))
	}
	n := f.scheduler.scheduled[0]
	if n.Email != "guest@example.com" || n.CouponCode != "REVIEW-AB12CD34" {
		t.Errorf("unexpected notification: %+v", n)
	}
	wantFire := before.Add(60 * time.Minute)
	if n.FireAt.Before(wantFire.Add(-time.Minute)) || n.FireAt.After(wantFire.Add(time.Minute)) {
		t.Errorf("fire time %v not ~60m after click", n.FireAt)
	}
}

func TestHandleClickRegisteredRecordsBeforeIssuance(t *testing.T) {
	f := newFixture()
	req := f.seedOrder(102, "member@example.com")
	f.customers.byEmail["member@example.com"] = &models.Customer{ID: 7, Email: "member@example.com"}

	outcome := f.svc.HandleClick(context.Background(), req)

	if outcome.Kind != OutcomeRedirect {
		t.Fatalf("expected redirect, got reject: %q", outcome.Message)
	}
	if len(f.ledger.recorded) != 1 || f.ledger.recorded[0].Kind != models.IdentityRegistered {
		t.Fatalf("expected one registered claim record, got %+v", f.ledger.recorded)
	}
	if len(f.issuer.issued) != 1 {
		t.Errorf("expected coupon issued for registered customer, got %d", len(f.issuer.issued))
	}
}

func TestHandleClickReplayIsIdempotent(t *testing.T) {
	f := newFixture()
	req := f.seedOrder(103, "guest@example.com")

	first := f.svc.HandleClick(context.Background(), req)
	second := f.svc.HandleClick(context.Background(), req)

	if first.Kind != OutcomeRedirect || second.Kind != OutcomeRedirect {
		t.Fatal("both clicks should redirect")
	}
	if second.URL != first.URL {
		t.Errorf("replay redirected elsewhere: %s vs %s", second.URL, first.URL)
	}
	if len(f.issuer.issued) != 1 {
		t.Errorf("replay issued a second coupon: %d issued", len(f.issuer.issued))
	}
	if len(f.scheduler.scheduled) != 1 {
		t.Errorf("replay scheduled a second email: %d scheduled", len(f.scheduler.scheduled))
	}
}

func TestHandleClickTamperedToken(t *testing.T) {
	f := newFixture()
	req := f.seedOrder(104, "guest@example.com")
	req.Token = req.Token[:len(req.Token)-1] + "0"
	if req.Token == f.orders.meta[104]["_gri_review_token"] {
		req.Token = req.Token[:len(req.Token)-1] + "1"
	}

	outcome := f.svc.HandleClick(context.Background(), req)

	if outcome.Kind != OutcomeReject {
		t.Fatal("tampered token should be rejected")
	}
	if outcome.Message != msgInvalidOrExpired {
		t.Errorf("unexpected message: %q", outcome.Message)
	}
	if len(f.ledger.recorded) != 0 || len(f.issuer.issued) != 0 || len(f.scheduler.scheduled) != 0 {
		t.Error("tampered click must not touch the ledger, issuer, or scheduler")
	}
}

func TestHandleClickMalformedRequests(t *testing.T) {
	f := newFixture()
	valid := f.seedOrder(105, "guest@example.com")

	tests := []struct {
		name string
		req  models.ClickRequest
	}{
		{"wrong action", models.ClickRequest{Action: "other", OrderID: valid.OrderID, Token: valid.Token}},
		{"zero order id", models.ClickRequest{Action: ActionMarker, OrderID: 0, Token: valid.Token}},
		{"empty token", models.ClickRequest{Action: ActionMarker, OrderID: valid.OrderID, Token: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			outcome := f.svc.HandleClick(context.Background(), tc.req)
			if outcome.Kind != OutcomeReject || outcome.Message != msgInvalidLink {
				t.Errorf("expected %q rejection, got %+v", msgInvalidLink, outcome)
			}
		})
	}

	if len(f.issuer.issued) != 0 {
		t.Error("malformed requests must not issue coupons")
	}
}

func TestHandleClickUnknownOrder(t *testing.T) {
	f := newFixture()

	outcome := f.svc.HandleClick(context.Background(), models.ClickRequest{
		Action:  ActionMarker,
		OrderID: 999,
		Token:   "deadbeef",
	})

	if outcome.Kind != OutcomeReject || outcome.Message != msgInvalidOrExpired {
		t.Errorf("expected %q rejection, got %+v", msgInvalidOrExpired, outcome)
	}
}

func TestHandleClickCouponDisabled(t *testing.T) {
	f := newFixture()
	f.cfg.Incentive.EnableCoupon = false
	req := f.seedOrder(106, "member@example.com")
	f.customers.byEmail["member@example.com"] = &models.Customer{ID: 9, Email: "member@example.com"}

	outcome := f.svc.HandleClick(context.Background(), req)

	if outcome.Kind != OutcomeRedirect {
		t.Fatalf("expected redirect, got reject: %q", outcome.Message)
	}
	// The click itself is still recorded for registered customers.
	if len(f.ledger.recorded) != 1 {
		t.Errorf("expected registered claim recorded, got %d", len(f.ledger.recorded))
	}
	if len(f.issuer.issued) != 0 || len(f.scheduler.scheduled) != 0 {
		t.Error("disabled coupons must not issue or schedule anything")
	}
}

func TestHandleClickMissingPlaceID(t *testing.T) {
	f := newFixture()
	f.cfg.Incentive.GooglePlaceID = ""
	req := f.seedOrder(107, "guest@example.com")

	outcome := f.svc.HandleClick(context.Background(), req)

	if outcome.Kind != OutcomeReject || outcome.Message != msgPlaceIDMissing {
		t.Errorf("expected place-id rejection, got %+v", outcome)
	}
}

func TestHandleClickLedgerErrorFailsOpen(t *testing.T) {
	f := newFixture()
	req := f.seedOrder(108, "guest@example.com")
	f.ledger.lookupErr = errors.New("store unavailable")

	outcome := f.svc.HandleClick(context.Background(), req)

	if outcome.Kind != OutcomeRedirect {
		t.Fatalf("ledger failure should still redirect, got %+v", outcome)
	}
	if len(f.issuer.issued) != 0 || len(f.scheduler.scheduled) != 0 {
		t.Error("ledger failure must not issue or schedule")
	}
}

func TestHandleClickIssuanceFailureStillRedirects(t *testing.T) {
	f := newFixture()
	req := f.seedOrder(109, "guest@example.com")
	f.issuer.err = errors.New("database down")

	outcome := f.svc.HandleClick(context.Background(), req)

	if outcome.Kind != OutcomeRedirect {
		t.Fatalf("issuance failure should still redirect, got %+v", outcome)
	}
	if len(f.scheduler.scheduled) != 0 {
		t.Error("no notification may be scheduled when issuance fails")
	}
}

func TestReviewLink(t *testing.T) {
	f := newFixture()
	f.orders.orders[201] = &models.Order{ID: 201, BillingEmail: "buyer@example.com", Status: "completed"}

	link, err := f.svc.ReviewLink(context.Background(), 201)
	if err != nil {
		t.Fatalf("ReviewLink: %v", err)
	}

	if !strings.HasPrefix(link.URL, "https://shop.example.com/review?") {
		t.Errorf("unexpected link base: %s", link.URL)
	}
	if !strings.Contains(link.URL, "gri_action=review_click") ||
		!strings.Contains(link.URL, "order_id=201") {
		t.Errorf("link missing click parameters: %s", link.URL)
	}
	if link.Text != f.cfg.Incentive.LinkText {
		t.Errorf("unexpected link text: %q", link.Text)
	}
	if len(f.orders.annotated) != 1 || f.orders.annotated[0] != 201 {
		t.Errorf("order was not annotated: %v", f.orders.annotated)
	}

	// The issued link must survive the click-time verification round trip.
	tag := f.orders.meta[201]["_gri_review_token"]
	if !strings.Contains(link.URL, "token="+tag) {
		t.Errorf("link token does not match stored tag")
	}
	outcome := f.svc.HandleClick(context.Background(), models.ClickRequest{
		Action:  ActionMarker,
		OrderID: 201,
		Token:   tag,
	})
	if outcome.Kind != OutcomeRedirect {
		t.Errorf("issued link failed verification: %+v", outcome)
	}
}

func TestReviewLinkAlreadyClaimed(t *testing.T) {
	f := newFixture()
	f.orders.orders[202] = &models.Order{ID: 202, BillingEmail: "buyer@example.com"}
	f.ledger.claimed["buyer@example.com"] = true

	_, err := f.svc.ReviewLink(context.Background(), 202)
	if !errors.Is(err, claim.ErrAlreadyClaimed) {
		t.Errorf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestReviewLinkErrors(t *testing.T) {
	f := newFixture()
	f.orders.orders[203] = &models.Order{ID: 203, BillingEmail: ""}

	if _, err := f.svc.ReviewLink(context.Background(), 999); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.svc.ReviewLink(context.Background(), 203); !errors.Is(err, ErrNoBillingEmail) {
		t.Errorf("expected ErrNoBillingEmail, got %v", err)
	}

	f.cfg.Incentive.GooglePlaceID = ""
	if _, err := f.svc.ReviewLink(context.Background(), 203); !errors.Is(err, ErrPlaceIDNotConfigured) {
		t.Errorf("expected ErrPlaceIDNotConfigured, got %v", err)
	}
}
