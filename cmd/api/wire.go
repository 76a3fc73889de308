//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	incentive "github.com/DevWael/google-review-incentive"
	"github.com/DevWael/google-review-incentive/claim"
	"github.com/DevWael/google-review-incentive/config"
	"github.com/DevWael/google-review-incentive/coupon"
	"github.com/DevWael/google-review-incentive/customer"
	"github.com/DevWael/google-review-incentive/driver"
	"github.com/DevWael/google-review-incentive/handlers"
	"github.com/DevWael/google-review-incentive/mailer"
	"github.com/DevWael/google-review-incentive/notification"
	"github.com/DevWael/google-review-incentive/order"
	"github.com/DevWael/google-review-incentive/review"
	"github.com/DevWael/google-review-incentive/server"
)

func InitializeIncentiveService() (*server.Server, error) {

	wire.Build(
		config.ProvideApplicationConfig,
		config.NewLogger,
		config.ProvidePostgresConn,
		config.ProvideRedisClient,
		config.ProvideTokenCodec,
		driver.NewTransactionManager,
		order.NewRepository,
		order.NewService,
		customer.NewRepository,
		customer.NewService,
		coupon.NewRepository,
		coupon.NewService,
		claim.NewGuestStore,
		claim.NewLedger,
		notification.NewScheduler,
		mailer.NewClient,
		notification.NewNotifier,
		review.NewService,
		incentive.NewReviewIncentive,
		handlers.NewReviewHandler,
		handlers.NewAdminHandler,
		server.NewServer,
	)

	return &server.Server{}, nil
}
