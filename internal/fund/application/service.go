// 包 application 基金池服务的用例逻辑
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/fundpooling/internal/fund/domain"
	"github.com/wyfcoding/fundpooling/pkg/idgen"
	"github.com/wyfcoding/fundpooling/pkg/logger"
	"github.com/wyfcoding/fundpooling/pkg/metrics"
)

// FundService 基金应用服务
// 每个用例：加载聚合 → 执行领域操作 → 原子持久化 → 发布领域事件。
// 事件发布失败只记录日志，不回滚已提交的业务结果
type FundService struct {
	repo    domain.FundRepository
	events  domain.EventPublisher
	cache   domain.FundCache
	metrics *metrics.Metrics
}

// NewFundService 创建基金应用服务
func NewFundService(repo domain.FundRepository, events domain.EventPublisher, cache domain.FundCache, m *metrics.Metrics) *FundService {
	return &FundService{
		repo:    repo,
		events:  events,
		cache:   cache,
		metrics: m,
	}
}

// CreateFund 创建基金
func (s *FundService) CreateFund(ctx context.Context, req *CreateFundRequest) (*FundDTO, error) {
	interest, targetAmount, err := validateFundFields(req.Title, req.Interest, req.TargetAmount, req.Period)
	if err != nil {
		return nil, err
	}
	if req.AccountID == "" {
		return nil, fmt.Errorf("settlement account is required")
	}

	currency := domain.Currency(req.Currency)
	if !currency.Valid() {
		return nil, fmt.Errorf("unsupported currency: %s", req.Currency)
	}

	fundID := fmt.Sprintf("FND-%d", idgen.Next())
	fund := domain.NewFund(fundID, req.AccountID, req.Title, req.Description, req.Period, interest, targetAmount, currency)

	if err := s.repo.Create(ctx, fund); err != nil {
		logger.Error(ctx, "Failed to create fund", "fund_id", fundID, "title", req.Title, "error", err)
		return nil, err
	}

	s.metrics.FundsCreated.Inc()
	s.publish(ctx, domain.FundCreatedEvent{
		BaseEvent:    baseEvent(fund.FundID),
		Title:        fund.Title,
		TargetAmount: fund.TargetAmount,
		Currency:     fund.Currency,
	})

	logger.Info(ctx, "Fund created", "fund_id", fundID, "title", req.Title, "target_amount", req.TargetAmount)

	return toFundDTO(fund), nil
}

// UpdateFund 更新基金基础属性
func (s *FundService) UpdateFund(ctx context.Context, fundID string, req *UpdateFundRequest) (*FundDTO, error) {
	interest, targetAmount, err := validateFundFields(req.Title, req.Interest, req.TargetAmount, req.Period)
	if err != nil {
		return nil, err
	}

	fund, err := s.repo.Update(ctx, fundID, func(f *domain.Fund) error {
		// 募集目标不得低于已出资总额
		if f.InvestedAmount.GreaterThan(targetAmount) {
			return domain.ErrTargetExceeded
		}
		f.Title = req.Title
		f.Description = req.Description
		f.Period = req.Period
		f.Interest = interest
		f.TargetAmount = targetAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, fundID)

	return toFundDTO(fund), nil
}

// CloseFund 封闭基金
func (s *FundService) CloseFund(ctx context.Context, fundID string) (*FundDTO, error) {
	fund, err := s.repo.Update(ctx, fundID, func(f *domain.Fund) error {
		return f.Close()
	})
	if err != nil {
		logger.Warn(ctx, "Failed to close fund", "fund_id", fundID, "error", err)
		return nil, err
	}

	s.invalidate(ctx, fundID)
	s.metrics.FundsClosed.Inc()

	closedUntil, _ := fund.GetClosedUntil()
	s.publish(ctx, domain.FundClosedEvent{
		BaseEvent:      baseEvent(fund.FundID),
		InvestedAmount: fund.InvestedAmount,
		ClosedUntil:    closedUntil,
	})

	logger.Info(ctx, "Fund closed", "fund_id", fundID, "invested_amount", fund.InvestedAmount.String())

	return toFundDTO(fund), nil
}

// FinishFund 结束基金
func (s *FundService) FinishFund(ctx context.Context, fundID string) (*FundDTO, error) {
	fund, err := s.repo.Update(ctx, fundID, func(f *domain.Fund) error {
		return f.Finish()
	})
	if err != nil {
		logger.Warn(ctx, "Failed to finish fund", "fund_id", fundID, "error", err)
		return nil, err
	}

	s.invalidate(ctx, fundID)
	s.metrics.FundsFinished.Inc()
	s.publish(ctx, domain.FundFinishedEvent{
		BaseEvent:      baseEvent(fund.FundID),
		ReturnedAmount: fund.ReturnedAmount,
	})

	logger.Info(ctx, "Fund finished", "fund_id", fundID)

	return toFundDTO(fund), nil
}

// CancelFund 取消基金并全额退款
func (s *FundService) CancelFund(ctx context.Context, fundID string) (*FundDTO, error) {
	var refunds []*domain.Investment

	fund, err := s.repo.Update(ctx, fundID, func(f *domain.Fund) error {
		var cancelErr error
		refunds, cancelErr = f.Cancel()
		return cancelErr
	})
	if err != nil {
		logger.Warn(ctx, "Failed to cancel fund", "fund_id", fundID, "error", err)
		return nil, err
	}

	refunded := decimal.Zero
	for _, investment := range refunds {
		refunded = refunded.Add(investment.Amount.Neg())
	}

	s.invalidate(ctx, fundID)
	s.metrics.FundsCancelled.Inc()
	s.publish(ctx, domain.FundCancelledEvent{
		BaseEvent:      baseEvent(fund.FundID),
		RefundedAmount: refunded,
		RefundCount:    len(refunds),
	})

	logger.Info(ctx, "Fund cancelled", "fund_id", fundID, "refunded_amount", refunded.String(), "refund_count", len(refunds))

	return toFundDTO(fund), nil
}

// AddFunds 记录出资
func (s *FundService) AddFunds(ctx context.Context, fundID, accountID, amountStr string) (*InvestmentDTO, error) {
	amount, err := parseAmount(amountStr)
	if err != nil {
		return nil, err
	}

	var investment *domain.Investment

	fund, err := s.repo.Update(ctx, fundID, func(f *domain.Fund) error {
		var addErr error
		investment, addErr = f.AddFunds(accountID, amount)
		return addErr
	})
	if err != nil {
		logger.Warn(ctx, "Failed to add funds", "fund_id", fundID, "account_id", accountID, "amount", amountStr, "error", err)
		return nil, err
	}

	s.invalidate(ctx, fundID)
	s.metrics.InvestmentsAdded.Inc()
	s.publish(ctx, domain.FundsAddedEvent{
		BaseEvent:      baseEvent(fund.FundID),
		AccountID:      accountID,
		Amount:         amount,
		InvestedAmount: fund.InvestedAmount,
	})

	logger.Info(ctx, "Funds added", "fund_id", fundID, "account_id", accountID, "amount", amountStr)

	return toInvestmentDTO(investment), nil
}

// RemoveFunds 记录撤资
func (s *FundService) RemoveFunds(ctx context.Context, fundID, accountID, amountStr string) (*InvestmentDTO, error) {
	amount, err := parseAmount(amountStr)
	if err != nil {
		return nil, err
	}

	var investment *domain.Investment

	fund, err := s.repo.Update(ctx, fundID, func(f *domain.Fund) error {
		var removeErr error
		investment, removeErr = f.RemoveFunds(accountID, amount)
		return removeErr
	})
	if err != nil {
		logger.Warn(ctx, "Failed to remove funds", "fund_id", fundID, "account_id", accountID, "amount", amountStr, "error", err)
		return nil, err
	}

	s.invalidate(ctx, fundID)
	s.metrics.InvestmentsRemoved.Inc()
	s.publish(ctx, domain.FundsRemovedEvent{
		BaseEvent:      baseEvent(fund.FundID),
		AccountID:      accountID,
		Amount:         amount,
		InvestedAmount: fund.InvestedAmount,
	})

	logger.Info(ctx, "Funds removed", "fund_id", fundID, "account_id", accountID, "amount", amountStr)

	return toInvestmentDTO(investment), nil
}

// AddPayment 在封闭基金上分配回款
func (s *FundService) AddPayment(ctx context.Context, fundID, amountStr string) (*PaymentDTO, error) {
	amount, err := parseAmount(amountStr)
	if err != nil {
		return nil, err
	}

	var payment *domain.Payment

	fund, err := s.repo.Update(ctx, fundID, func(f *domain.Fund) error {
		var payErr error
		payment, payErr = f.AddPayment(amount)
		return payErr
	})
	if err != nil {
		logger.Warn(ctx, "Failed to add payment", "fund_id", fundID, "amount", amountStr, "error", err)
		return nil, err
	}

	distributed := payment.DistributedAmount()
	remainder := payment.Remainder()

	s.invalidate(ctx, fundID)
	s.metrics.PaymentsTotal.Inc()
	s.metrics.PayoutAmountTotal.Add(distributed.InexactFloat64())
	s.metrics.PayoutRemainderTotal.Add(remainder.InexactFloat64())

	s.publish(ctx, domain.PaymentCreatedEvent{
		BaseEvent:         baseEvent(fund.FundID),
		PaymentID:         payment.PaymentID,
		Amount:            payment.Amount,
		DistributedAmount: distributed,
		PayoutCount:       len(payment.Payouts),
	})

	logger.Info(ctx, "Payment distributed",
		"fund_id", fundID,
		"payment_id", payment.PaymentID,
		"amount", amountStr,
		"distributed", distributed.String(),
		"remainder", remainder.String(),
	)

	return toPaymentDTO(payment), nil
}

// GetFund 查询基金，优先命中快照缓存
func (s *FundService) GetFund(ctx context.Context, fundID string) (*FundDTO, error) {
	if s.cache != nil {
		if fund, err := s.cache.Get(ctx, fundID); err == nil && fund != nil {
			return toFundDTO(fund), nil
		}
	}

	fund, err := s.repo.Get(ctx, fundID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, fund); err != nil {
			logger.Warn(ctx, "Failed to cache fund snapshot", "fund_id", fundID, "error", err)
		}
	}

	return toFundDTO(fund), nil
}

// ListInvestors 分页列出头寸
func (s *FundService) ListInvestors(ctx context.Context, fundID string, onlyActive bool, limit, offset int) ([]*InvestorDTO, int64, error) {
	investors, total, err := s.repo.ListInvestors(ctx, fundID, onlyActive, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*InvestorDTO, 0, len(investors))
	for _, investor := range investors {
		dtos = append(dtos, toInvestorDTO(investor))
	}

	return dtos, total, nil
}

// ListPayments 分页列出回款历史
func (s *FundService) ListPayments(ctx context.Context, fundID string, limit, offset int) ([]*PaymentDTO, int64, error) {
	payments, total, err := s.repo.ListPayments(ctx, fundID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]*PaymentDTO, 0, len(payments))
	for _, payment := range payments {
		dtos = append(dtos, toPaymentDTO(payment))
	}

	return dtos, total, nil
}

// GetExpectedReturn 计算某一本金的预期回款
func (s *FundService) GetExpectedReturn(ctx context.Context, fundID, amountStr string) (string, error) {
	amount, err := parseAmount(amountStr)
	if err != nil {
		return "", err
	}

	fund, err := s.repo.Get(ctx, fundID)
	if err != nil {
		return "", err
	}

	return fund.GetExpectedReturnAmount(amount).String(), nil
}

func (s *FundService) publish(ctx context.Context, event domain.FundEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Error(ctx, "Failed to publish fund event",
			"event_type", event.EventType(),
			"fund_id", event.AggregateID(),
			"error", err,
		)
	}
}

func (s *FundService) invalidate(ctx context.Context, fundID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fundID); err != nil {
		logger.Warn(ctx, "Failed to invalidate fund cache", "fund_id", fundID, "error", err)
	}
}

func baseEvent(fundID string) domain.BaseEvent {
	return domain.BaseEvent{
		FundID:    fundID,
		Timestamp: time.Now(),
	}
}

func validateFundFields(title, interestStr, targetAmountStr string, period int) (decimal.Decimal, decimal.Decimal, error) {
	if title == "" {
		return decimal.Zero, decimal.Zero, fmt.Errorf("title is required")
	}
	if period <= 0 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("period must be positive")
	}

	interest, err := decimal.NewFromString(interestStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid interest: %w", err)
	}
	if interest.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("interest must not be negative")
	}

	targetAmount, err := decimal.NewFromString(targetAmountStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid target amount: %w", err)
	}
	if !targetAmount.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("target amount must be positive")
	}

	return interest, targetAmount, nil
}

func parseAmount(amountStr string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	return amount, nil
}
