package application

import (
	"time"

	"github.com/wyfcoding/fundpooling/internal/fund/domain"
)

// CreateFundRequest 创建基金请求 DTO
type CreateFundRequest struct {
	AccountID    string // 结算账户
	Title        string // 标题，全局唯一
	Description  string // 描述
	Period       int    // 封闭期（天）
	Interest     string // 利率（小数字符串，如 "0.08"）
	TargetAmount string // 募集目标（最小货币单位）
	Currency     string // 币种
}

// UpdateFundRequest 更新基金请求 DTO
type UpdateFundRequest struct {
	Title        string
	Description  string
	Period       int
	Interest     string
	TargetAmount string
}

// FundDTO 基金 DTO
type FundDTO struct {
	FundID         string // 基金 ID
	Title          string // 标题
	Description    string // 描述
	State          string // 状态名
	Period         int    // 封闭期（天）
	Interest       string // 利率
	TargetAmount   string // 募集目标
	InvestedAmount string // 当前出资总额
	ReturnedAmount string // 已回款总额
	Currency       string // 币种
	AccountID      string // 结算账户
	// 预期回款总额（展示用）
	TotalExpectedReturn string
	// 封闭期截止日（未封闭时为空）
	ClosedUntil string
	ClosedAt    int64 // 封闭时间戳（秒，未发生为 0）
	FinishedAt  int64
	CancelledAt int64
	CreatedAt   int64
	UpdatedAt   int64
}

// InvestorDTO 头寸 DTO
type InvestorDTO struct {
	InvestorID     string
	FundID         string
	AccountID      string
	InvestedAmount string
	Active         bool
	CreatedAt      int64
}

// InvestmentDTO 出入金流水 DTO
type InvestmentDTO struct {
	InvestmentID string
	InvestorID   string
	FundID       string
	AccountID    string
	// 带符号金额：出资为正，撤资为负
	Amount    string
	CreatedAt int64
}

// PayoutDTO 份额 DTO
type PayoutDTO struct {
	InvestorID string
	AccountID  string
	Amount     string
}

// PaymentDTO 回款 DTO
type PaymentDTO struct {
	PaymentID string
	FundID    string
	Amount    string
	// 实际分配总额（截断后）
	DistributedAmount string
	// 未分配尾差
	Remainder  string
	TransferID string
	Payouts    []*PayoutDTO
	CreatedAt  int64
}

func toFundDTO(fund *domain.Fund) *FundDTO {
	dto := &FundDTO{
		FundID:              fund.FundID,
		Title:               fund.Title,
		Description:         fund.Description,
		State:               fund.State.String(),
		Period:              fund.Period,
		Interest:            fund.Interest.String(),
		TargetAmount:        fund.TargetAmount.String(),
		InvestedAmount:      fund.InvestedAmount.String(),
		ReturnedAmount:      fund.ReturnedAmount.String(),
		Currency:            string(fund.Currency),
		AccountID:           fund.AccountID,
		TotalExpectedReturn: fund.GetTotalExpectedReturnAmount().String(),
		CreatedAt:           fund.CreatedAt.Unix(),
		UpdatedAt:           fund.UpdatedAt.Unix(),
	}

	if closedUntil, err := fund.GetClosedUntil(); err == nil {
		dto.ClosedUntil = closedUntil.Format(time.DateOnly)
	}
	if fund.ClosedAt != nil {
		dto.ClosedAt = fund.ClosedAt.Unix()
	}
	if fund.FinishedAt != nil {
		dto.FinishedAt = fund.FinishedAt.Unix()
	}
	if fund.CancelledAt != nil {
		dto.CancelledAt = fund.CancelledAt.Unix()
	}

	return dto
}

func toInvestorDTO(investor *domain.Investor) *InvestorDTO {
	return &InvestorDTO{
		InvestorID:     investor.InvestorID,
		FundID:         investor.FundID,
		AccountID:      investor.AccountID,
		InvestedAmount: investor.InvestedAmount.String(),
		Active:         investor.Active(),
		CreatedAt:      investor.CreatedAt.Unix(),
	}
}

func toInvestmentDTO(investment *domain.Investment) *InvestmentDTO {
	return &InvestmentDTO{
		InvestmentID: investment.InvestmentID,
		InvestorID:   investment.InvestorID,
		FundID:       investment.FundID,
		AccountID:    investment.AccountID,
		Amount:       investment.Amount.String(),
		CreatedAt:    investment.CreatedAt.Unix(),
	}
}

func toPaymentDTO(payment *domain.Payment) *PaymentDTO {
	dto := &PaymentDTO{
		PaymentID:         payment.PaymentID,
		FundID:            payment.FundID,
		Amount:            payment.Amount.String(),
		DistributedAmount: payment.DistributedAmount().String(),
		Remainder:         payment.Remainder().String(),
		TransferID:        payment.TransferID,
		CreatedAt:         payment.CreatedAt.Unix(),
	}

	for _, payout := range payment.Payouts {
		dto.Payouts = append(dto.Payouts, &PayoutDTO{
			InvestorID: payout.InvestorID,
			AccountID:  payout.AccountID,
			Amount:     payout.Amount.String(),
		})
	}

	return dto
}
