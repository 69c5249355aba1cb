package service

import (
	"context"
	"errors"
	"prompt_library_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
)

const denylistPrefix = "denylist:"

// TokenDenylist 已吊销令牌的 jti，过期时间与令牌剩余有效期一致
type TokenDenylist struct {
	Redis *redis.Client
}

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist {
	return &TokenDenylist{Redis: rdb}
}

// Enabled 未配置 Redis 时不支持吊销
func (d *TokenDenylist) Enabled() bool {
	return d != nil && d.Redis != nil
}

func (d *TokenDenylist) Add(ctx context.Context, jti string, expiration time.Duration) error {
	if !d.Enabled() {
		return util.ErrRevocationDisabled
	}
	if expiration <= 0 {
		return nil
	}
	return d.Redis.Set(ctx, denylistPrefix+jti, 1, expiration).Err()
}

func (d *TokenDenylist) IsDenylisted(ctx context.Context, jti string) (bool, error) {
	if !d.Enabled() || jti == "" {
		return false, nil
	}
	val, err := d.Redis.Get(ctx, denylistPrefix+jti).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return val != "", nil
}
