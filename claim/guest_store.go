package claim

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/DevWael/google-review-incentive/models"
)

const guestClaimsKey = "incentive:guest_claims"

// GuestStore is the shared guest-claim mapping. There is no per-guest
// storage primitive, so all guests live under one key, fields keyed by
// normalized email.
type GuestStore interface {
	Get(ctx context.Context, email string) (*models.GuestClaim, bool, error)
	// SetIfAbsent records the claim only when the email has none yet and
	// reports whether it was recorded.
	SetIfAbsent(ctx context.Context, email string, claim *models.GuestClaim) (bool, error)
	Delete(ctx context.Context, email string) error
	All(ctx context.Context) (map[string]models.GuestClaim, error)
	Clear(ctx context.Context) error
}

type redisGuestStore struct {
	client *redis.Client
}

func NewGuestStore(client *redis.Client) GuestStore {
	return &redisGuestStore{client: client}
}

func (s *redisGuestStore) Get(ctx context.Context, email string) (*models.GuestClaim, bool, error) {

	raw, err := s.client.HGet(ctx, guestClaimsKey, models.NormalizeEmail(email)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read guest claim: %w", err)
	}

	claim := &models.GuestClaim{}
	if err = json.Unmarshal([]byte(raw), claim); err != nil {
		return nil, false, fmt.Errorf("failed to decode guest claim: %w", err)
	}

	return claim, true, nil
}

func (s *redisGuestStore) SetIfAbsent(ctx context.Context, email string, claim *models.GuestClaim) (bool, error) {

	payload, err := json.Marshal(claim)
	if err != nil {
		return false, fmt.Errorf("failed to encode guest claim: %w", err)
	}

	recorded, err := s.client.HSetNX(ctx, guestClaimsKey, models.NormalizeEmail(email), payload).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record guest claim: %w", err)
	}

	return recorded, nil
}

func (s *redisGuestStore) Delete(ctx context.Context, email string) error {
	if err := s.client.HDel(ctx, guestClaimsKey, models.NormalizeEmail(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete guest claim: %w", err)
	}
	return nil
}

func (s *redisGuestStore) All(ctx context.Context) (map[string]models.GuestClaim, error) {

	raw, err := s.client.HGetAll(ctx, guestClaimsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list guest claims: %w", err)
	}

	claims := make(map[string]models.GuestClaim, len(raw))
	for email, value := range raw {
		var claim models.GuestClaim
		if err = json.Unmarshal([]byte(value), &claim); err != nil {
			return nil, fmt.Errorf("failed to decode guest claim for %s: %w", email, err)
		}
		claims[email] = claim
	}

	return claims, nil
}

func (s *redisGuestStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, guestClaimsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear guest claims: %w", err)
	}
	return nil
}
