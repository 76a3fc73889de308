package notification

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/claim"
	"github.com/DevWael/google-review-incentive/config"
	"github.com/DevWael/google-review-incentive/customer"
	"github.com/DevWael/google-review-incentive/mailer"
)

const couponCodePlaceholder = "{coupon_code}"

// Notifier executes a due coupon email exactly as scheduled: template from
// configuration, placeholder substituted, one send, no retry. The
// scheduler may deliver a job twice; sending the same email twice is
// accepted.
type Notifier interface {
	Execute(ctx context.Context, email, couponCode string) error
}

type notifier struct {
	mailer    mailer.Mailer
	customers customer.Service
	cfg       *config.Config
	logger    *zap.Logger
}

func NewNotifier(mailer mailer.Mailer, customers customer.Service, cfg *config.Config, logger *zap.Logger) Notifier {
	return &notifier{
		mailer:    mailer,
		customers: customers,
		cfg:       cfg,
		logger:    logger,
	}
}

func (n *notifier) Execute(ctx context.Context, email, couponCode string) error {

	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", email, err)
	}

	subject := n.cfg.Incentive.EmailSubject
	content := strings.ReplaceAll(n.cfg.Incentive.EmailContent, couponCodePlaceholder, couponCode)

	if err := n.mailer.Send(ctx, email, subject, formatEmailHTML(content)); err != nil {
		n.logger.Error("failed to send coupon email",
			zap.String("email", email),
			zap.String("code", couponCode),
			zap.Error(err))
		return err
	}

	n.recordSentDate(ctx, email)

	n.logger.Info("coupon email sent",
		zap.String("email", email),
		zap.String("code", couponCode))

	return nil
}

// recordSentDate stamps registered customers only; guests have no profile
// to stamp.
func (n *notifier) recordSentDate(ctx context.Context, email string) {
	c, err := n.customers.GetByEmail(ctx, email)
	if err != nil || c == nil {
		return
	}

	sentAt := strconv.FormatInt(time.Now().Unix(), 10)
	if err = n.customers.SetMeta(ctx, c.ID, claim.MetaCouponSentDate, sentAt); err != nil {
		n.logger.Error("failed to record coupon sent date",
			zap.Uint64("customer_id", c.ID),
			zap.Error(err))
	}
}

func formatEmailHTML(content string) string {

	var body strings.Builder
	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		body.WriteString("<p>" + paragraph + "</p>\n")
	}

	return `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="margin: 0; padding: 0; background-color: #f7f7f7; font-family: Arial, sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0" border="0" style="background-color: #f7f7f7;">
<tr><td align="center" style="padding: 40px 0;">
<table width="600" cellpadding="0" cellspacing="0" border="0" style="background-color: #ffffff; border-radius: 5px;">
<tr><td style="padding: 40px;">
` + body.String() + `</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`
}
