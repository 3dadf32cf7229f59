package application

import (
	"context"
	"time"

	"github.com/wyfcoding/fundpooling/internal/fund/domain"
	"github.com/wyfcoding/fundpooling/pkg/logger"
)

// MaturityJob 负责定期结束封闭期已满的基金
// 封闭期截止日（closedAt + period 天）过后，基金进入 FINISHED 终态
type MaturityJob struct {
	service  *FundService
	repo     domain.FundRepository
	interval time.Duration
	// 单轮扫描上限
	batchSize int
}

// NewMaturityJob 创建到期结束任务
func NewMaturityJob(service *FundService, repo domain.FundRepository) *MaturityJob {
	return &MaturityJob{
		service:   service,
		repo:      repo,
		interval:  1 * time.Hour,
		batchSize: 100,
	}
}

// Start 启动任务，阻塞直到 ctx 取消
func (j *MaturityJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logger.Info(ctx, "Fund maturity job started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *MaturityJob) run(ctx context.Context) {
	fundIDs, err := j.repo.ListMatured(ctx, time.Now(), j.batchSize)
	if err != nil {
		logger.Error(ctx, "Failed to list matured funds", "error", err)
		return
	}

	for _, fundID := range fundIDs {
		if _, err := j.service.FinishFund(ctx, fundID); err != nil {
			// 并发下基金可能已被结束，继续处理其余基金
			logger.Warn(ctx, "Failed to finish matured fund", "fund_id", fundID, "error", err)
		}
	}

	if len(fundIDs) > 0 {
		logger.Info(ctx, "Matured funds processed", "count", len(fundIDs))
	}
}
