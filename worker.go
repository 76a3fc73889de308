package incentive

import (
	"context"

	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/models"
)

type Worker struct {
	ID         int
	WorkerPool chan chan WorkRequest
	JobChannel chan WorkRequest
	quit       chan bool
	engine     *ReviewIncentive
}

type WorkRequest struct {
	Notification *models.ScheduledNotification
	Ctx          context.Context
}

func NewWorker(id int, workerPool chan chan WorkRequest, engine *ReviewIncentive) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan WorkRequest),
		quit:       make(chan bool),
		engine:     engine,
	}
}

func (w Worker) Start() {
	go func() {
		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.engine.logger.Info("processing coupon email",
					zap.String("notification_id", job.Notification.ID.String()),
					zap.String("email", job.Notification.Email))

				err := w.engine.SendCouponEmail(job.Ctx, job.Notification.Email, job.Notification.CouponCode)

				if err != nil {
					w.engine.logger.Error("coupon email failed",
						zap.Error(err),
						zap.String("notification_id", job.Notification.ID.String()),
						zap.String("email", job.Notification.Email))
				}

			case <-w.quit:
				return
			}
		}
	}()
}

func (w Worker) Stop() {
	close(w.quit)
}
