// 包 cache 基金快照的 Redis 缓存实现
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/fundpooling/internal/fund/domain"
	pkgcache "github.com/wyfcoding/fundpooling/pkg/cache"
)

// RedisFundCache 基金快照缓存
// 只服务读路径；任何变更操作都会使对应键失效
type RedisFundCache struct {
	cache *pkgcache.RedisCache
	ttl   time.Duration
}

// NewRedisFundCache 创建基金快照缓存
func NewRedisFundCache(cache *pkgcache.RedisCache, ttl time.Duration) domain.FundCache {
	return &RedisFundCache{
		cache: cache,
		ttl:   ttl,
	}
}

func key(fundID string) string {
	return fmt.Sprintf("fund:snapshot:%s", fundID)
}

// Get 获取基金快照，未命中返回 (nil, nil)
func (c *RedisFundCache) Get(ctx context.Context, fundID string) (*domain.Fund, error) {
	var fund domain.Fund

	if err := c.cache.Get(ctx, key(fundID), &fund); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}

	return &fund, nil
}

// Set 写入基金快照
func (c *RedisFundCache) Set(ctx context.Context, fund *domain.Fund) error {
	return c.cache.Set(ctx, key(fund.FundID), fund, c.ttl)
}

// Invalidate 使基金快照失效
func (c *RedisFundCache) Invalidate(ctx context.Context, fundID string) error {
	return c.cache.Delete(ctx, key(fundID))
}
