package domain

import (
	"context"
	"time"
)

// FundRepository 基金聚合仓储接口
// 聚合作为整体加载与持久化；Update 在行锁与单个事务内执行修改函数，
// 保证同一基金的单写者语义与一次逻辑操作的原子落库
type FundRepository interface {
	// Create 持久化新基金，标题唯一冲突翻译为 ErrTitleNotUnique
	Create(ctx context.Context, fund *Fund) error
	// Get 按基金 ID 整体加载聚合（含头寸），不存在返回 ErrFundNotFound
	Get(ctx context.Context, fundID string) (*Fund, error)
	// Update 在 FOR UPDATE 行锁与事务内加载聚合，执行 fn 后整体落库；
	// fn 返回错误时回滚且不发生任何持久化
	Update(ctx context.Context, fundID string, fn func(*Fund) error) (*Fund, error)
	// ListInvestors 分页列出头寸，onlyActive 过滤在查询侧完成
	ListInvestors(ctx context.Context, fundID string, onlyActive bool, limit, offset int) ([]*Investor, int64, error)
	// ListPayments 分页列出回款历史（含份额明细）
	ListPayments(ctx context.Context, fundID string, limit, offset int) ([]*Payment, int64, error)
	// ListMatured 列出封闭期已于 asOf 之前结束、仍处于 CLOSED 的基金 ID
	ListMatured(ctx context.Context, asOf time.Time, limit int) ([]string, error)
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, event FundEvent) error
}

// FundCache 基金快照缓存接口，未命中返回 (nil, nil)
type FundCache interface {
	Get(ctx context.Context, fundID string) (*Fund, error)
	Set(ctx context.Context, fund *Fund) error
	Invalidate(ctx context.Context, fundID string) error
}
