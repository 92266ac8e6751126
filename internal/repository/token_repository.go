package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenRepository 在 Redis 中登记有效 jti，支持单会话登录与注销吊销。
// 两个键互为索引：auth:user:<username> -> jti，auth:jti:<jti> -> username。
type TokenRepository struct {
	RDB *redis.Client
}

func NewTokenRepository(rdb *redis.Client) *TokenRepository {
	return &TokenRepository{RDB: rdb}
}

func userKey(username string) string { return "auth:user:" + username }
func jtiKey(jti string) string       { return "auth:jti:" + jti }

// Register 登记新会话；该用户已有活跃会话时返回 (false, nil)
func (r *TokenRepository) Register(ctx context.Context, username, jti string, ttl time.Duration) (bool, error) {
	ok, err := r.RDB.SetNX(ctx, userKey(username), jti, ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := r.RDB.Set(ctx, jtiKey(jti), username, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// IsActive jti 仍在 Redis 中才算有效，注销后立即失效
func (r *TokenRepository) IsActive(ctx context.Context, jti string) (bool, error) {
	_, err := r.RDB.Get(ctx, jtiKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Revoke 注销会话；jti 不存在时返回 (false, nil)
func (r *TokenRepository) Revoke(ctx context.Context, jti string) (bool, error) {
	username, err := r.RDB.Get(ctx, jtiKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	pipe := r.RDB.TxPipeline()
	pipe.Del(ctx, jtiKey(jti))
	pipe.Del(ctx, userKey(username))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}
