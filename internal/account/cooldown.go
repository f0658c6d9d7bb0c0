package account

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownStore throttles OTP resends per account so a stuck client
// cannot flood a mailbox. Two concurrent sends can still race past it;
// last write wins on the stored code, which is acceptable because the
// failure mode is "retry with the latest email".
type CooldownStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCooldownStore constructs a CooldownStore.
func NewCooldownStore(client *redis.Client, ttl time.Duration) *CooldownStore {
	return &CooldownStore{client: client, ttl: ttl}
}

// Acquire reports whether a send is allowed for the key right now and,
// if so, starts the cooldown window. A nil store always allows.
func (c *CooldownStore) Acquire(ctx context.Context, key string) (bool, error) {
	if c == nil || c.client == nil {
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, "otp_cooldown:"+key, 1, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("account: cooldown: %w", err)
	}
	return ok, nil
}
