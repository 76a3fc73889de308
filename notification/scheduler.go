package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DevWael/google-review-incentive/models"
)

const queueKey = "incentive:coupon_email_queue"

// Scheduler is a one-shot delay queue: members are coupon emails scored by
// their fire time. Delivery is at-least-once; a crash between PopDue and
// the send can duplicate an email, which the flow tolerates.
type Scheduler interface {
	Schedule(ctx context.Context, notification *models.ScheduledNotification) error
	// PopDue returns and removes every member whose fire time has passed,
	// up to limit.
	PopDue(ctx context.Context, now time.Time, limit int64) ([]*models.ScheduledNotification, error)
	// CancelAll drops the whole queue. Used on deactivation and uninstall
	// only.
	CancelAll(ctx context.Context) error
}

type redisScheduler struct {
	client *redis.Client
	logger *zap.Logger
}

func NewScheduler(client *redis.Client, logger *zap.Logger) Scheduler {
	return &redisScheduler{
		client: client,
		logger: logger,
	}
}

func (s *redisScheduler) Schedule(ctx context.Context, notification *models.ScheduledNotification) error {

	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	err = s.client.ZAdd(ctx, queueKey, redis.Z{
		Score:  float64(notification.FireAt.Unix()),
		Member: payload,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule notification: %w", err)
	}

	return nil
}

func (s *redisScheduler) PopDue(ctx context.Context, now time.Time, limit int64) ([]*models.ScheduledNotification, error) {

	members, err := s.client.ZRangeByScore(ctx, queueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due notifications: %w", err)
	}

	notifications := make([]*models.ScheduledNotification, 0, len(members))
	for _, member := range members {
		if err = s.client.ZRem(ctx, queueKey, member).Err(); err != nil {
			return notifications, fmt.Errorf("failed to remove due notification: %w", err)
		}

		notification := &models.ScheduledNotification{}
		if err = json.Unmarshal([]byte(member), notification); err != nil {
			// Undecodable members are already removed; dropping them is
			// better than blocking the queue forever.
			s.logger.Error("dropping undecodable notification", zap.Error(err))
			continue
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}

func (s *redisScheduler) CancelAll(ctx context.Context) error {
	if err := s.client.Del(ctx, queueKey).Err(); err != nil {
		return fmt.Errorf("failed to cancel scheduled notifications: %w", err)
	}
	return nil
}
