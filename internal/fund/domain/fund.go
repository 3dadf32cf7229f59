// 包 domain 基金池服务的领域模型
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FundState 基金生命周期状态
// 合法迁移：OPEN → CLOSED → FINISHED，或 OPEN → CANCELLED；
// FINISHED 与 CANCELLED 为终态
type FundState int8

const (
	// FundOpen 募集中
	FundOpen FundState = 0
	// FundClosed 已封闭，募集完成，进入回款期
	FundClosed FundState = 1
	// FundFinished 已结束
	FundFinished FundState = 2
	// FundCancelled 已取消
	FundCancelled FundState = 3
)

// String 返回状态名
func (s FundState) String() string {
	switch s {
	case FundOpen:
		return "OPEN"
	case FundClosed:
		return "CLOSED"
	case FundFinished:
		return "FINISHED"
	case FundCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// Fund 基金聚合根
// 独占持有投资人头寸与回款历史，是唯一的一致性边界：
// 对头寸或回款的所有修改必须经由聚合方法完成，
// 同一基金上的并发修改由调用方（仓储行锁）串行化。
// 不变量：InvestedAmount ≤ TargetAmount，且 InvestedAmount == Σ 活跃头寸
type Fund struct {
	gorm.Model
	// 基金 ID (业务主键)
	FundID string `gorm:"column:fund_id;type:varchar(32);uniqueIndex;not null" json:"fund_id"`
	// 标题，全局唯一
	Title string `gorm:"column:title;type:varchar(255);uniqueIndex:ux_fund_title;not null" json:"title"`
	// 描述
	Description string `gorm:"column:description;type:text" json:"description"`
	// 封闭期（天）
	Period int `gorm:"column:period;type:int;not null" json:"period"`
	// 利率（小数形式，如 0.08 表示 8%）
	Interest decimal.Decimal `gorm:"column:interest;type:decimal(16,8);not null" json:"interest"`
	// 募集目标（最小货币单位）
	TargetAmount decimal.Decimal `gorm:"column:target_amount;type:decimal(32,0);not null" json:"target_amount"`
	// 当前出资总额
	InvestedAmount decimal.Decimal `gorm:"column:invested_amount;type:decimal(32,0);default:0;not null" json:"invested_amount"`
	// 已回款总额（名义值累计）
	ReturnedAmount decimal.Decimal `gorm:"column:returned_amount;type:decimal(32,0);default:0;not null" json:"returned_amount"`
	// 状态
	State FundState `gorm:"column:state;type:tinyint;default:0;not null" json:"state"`
	// 币种
	Currency Currency `gorm:"column:currency;type:varchar(10);not null" json:"currency"`
	// 结算账户
	AccountID string `gorm:"column:account_id;type:varchar(32);not null" json:"account_id"`
	// 封闭时创建的入账转账
	DepositTransferID string `gorm:"column:deposit_transfer_id;type:varchar(32)" json:"deposit_transfer_id"`
	// 状态时间戳，至多一个非空，与状态一致
	ClosedAt    *time.Time `gorm:"column:closed_at" json:"closed_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at" json:"finished_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelled_at"`

	// 投资人头寸，随聚合整体加载
	Investors []*Investor `gorm:"foreignKey:FundID;references:FundID" json:"investors,omitempty"`
	// 回款历史，仅追加
	Payments []*Payment `gorm:"foreignKey:FundID;references:FundID" json:"payments,omitempty"`
	// 基金操作产生的转账记录
	Transfers []*Transfer `gorm:"foreignKey:FundID;references:FundID" json:"transfers,omitempty"`
}

// TableName 指定表名
func (Fund) TableName() string { return "funds" }

// NewFund 创建处于 OPEN 状态的基金
func NewFund(fundID, accountID, title, description string, period int, interest, targetAmount decimal.Decimal, currency Currency) *Fund {
	return &Fund{
		FundID:         fundID,
		Title:          title,
		Description:    description,
		Period:         period,
		Interest:       interest,
		TargetAmount:   targetAmount,
		InvestedAmount: decimal.Zero,
		ReturnedAmount: decimal.Zero,
		State:          FundOpen,
		Currency:       currency,
		AccountID:      accountID,
	}
}

// Close 封闭基金
// 仅允许 OPEN 且出资总额大于零；盖章 closedAt，
// 并针对结算账户创建一笔已确认的全额入账转账
func (f *Fund) Close() error {
	if f.State != FundOpen {
		return ErrInvalidState
	}
	if !f.InvestedAmount.IsPositive() {
		return ErrEmptyFund
	}

	now := time.Now()
	f.State = FundClosed
	f.ClosedAt = &now

	transfer := NewTransfer(f.FundID, f.AccountID, TransferDeposit, f.InvestedAmount, f.Currency)
	transfer.Confirm()

	f.DepositTransferID = transfer.TransferID
	f.Transfers = append(f.Transfers, transfer)

	return nil
}

// Finish 结束基金，仅允许 CLOSED
func (f *Fund) Finish() error {
	if f.State != FundClosed {
		return ErrInvalidState
	}

	now := time.Now()
	f.State = FundFinished
	f.FinishedAt = &now

	return nil
}

// Cancel 取消基金，仅允许 OPEN
// 盖章 cancelledAt 后对每个活跃投资人全额退款（走撤资路径），
// 出资总额归零，每人各产生一条负数流水
func (f *Fund) Cancel() ([]*Investment, error) {
	if f.State != FundOpen {
		return nil, ErrInvalidState
	}

	now := time.Now()
	f.State = FundCancelled
	f.CancelledAt = &now

	var refunds []*Investment
	for _, investor := range f.GetInvestors(true) {
		investment, err := f.RemoveFunds(investor.AccountID, investor.InvestedAmount)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, investment)
	}

	return refunds, nil
}

// AddFunds 记录账户对基金的一笔出资
// 基金尚在 OPEN（纯募集）阶段时拒绝；出资不得使总额超过募集目标。
// 校验全部通过后才修改状态，失败时聚合保持原样
func (f *Fund) AddFunds(accountID string, amount decimal.Decimal) (*Investment, error) {
	if f.State == FundOpen {
		return nil, ErrInvalidState
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	futureInvested := f.InvestedAmount.Add(amount)
	if futureInvested.GreaterThan(f.TargetAmount) {
		return nil, ErrTargetExceeded
	}

	f.InvestedAmount = futureInvested

	investor := f.GetInvestor(accountID, true)
	return investor.addInvestment(amount), nil
}

// RemoveFunds 记录账户对基金的一笔撤资
// 头寸必须已存在；头寸可以恰好归零，但不允许透支
func (f *Fund) RemoveFunds(accountID string, amount decimal.Decimal) (*Investment, error) {
	if f.State == FundOpen {
		return nil, ErrInvalidState
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	investor := f.GetInvestor(accountID, false)
	if investor == nil {
		return nil, ErrInvalidInvestor
	}
	if amount.GreaterThan(investor.InvestedAmount) {
		return nil, ErrInvalidAmount
	}

	f.InvestedAmount = f.InvestedAmount.Sub(amount)

	return investor.addInvestment(amount.Neg()), nil
}

// AddPayment 在封闭基金上分配一笔回款
// 每个活跃投资人的份额为 floor(amount × 出资额 ÷ 出资总额)，
// 精确整数除法向零截断；逐人取整产生的尾差不再二次分配，
// 留存在结算账户。ReturnedAmount 按名义总额累加（而非截断后之和）
func (f *Fund) AddPayment(amount decimal.Decimal) (*Payment, error) {
	if f.State != FundClosed {
		return nil, ErrInvalidState
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	payment := NewPayment(f.FundID, amount)

	for _, investor := range f.GetInvestors(true) {
		share, _ := amount.Mul(investor.InvestedAmount).QuoRem(f.InvestedAmount, 0)
		payment.addPayout(investor.InvestorID, investor.AccountID, share)
	}

	transfer := NewTransfer(f.FundID, f.AccountID, TransferPayout, amount, f.Currency)
	transfer.Confirm()

	payment.TransferID = transfer.TransferID
	f.Transfers = append(f.Transfers, transfer)
	f.Payments = append(f.Payments, payment)
	f.ReturnedAmount = f.ReturnedAmount.Add(amount)

	return payment, nil
}

// GetInvestor 按账户查找头寸，同一账户在一个基金内至多一条
func (f *Fund) GetInvestor(accountID string, createIfAbsent bool) *Investor {
	for _, investor := range f.Investors {
		if investor.AccountID == accountID {
			return investor
		}
	}

	if !createIfAbsent {
		return nil
	}

	investor := NewInvestor(f.FundID, accountID)
	f.Investors = append(f.Investors, investor)

	return investor
}

// GetInvestors 返回头寸列表，保持加载顺序
// onlyActive 为 true 时仅返回出资额大于零的头寸
func (f *Fund) GetInvestors(onlyActive bool) []*Investor {
	if !onlyActive {
		return append([]*Investor(nil), f.Investors...)
	}

	var active []*Investor
	for _, investor := range f.Investors {
		if investor.Active() {
			active = append(active, investor)
		}
	}
	return active
}

// GetTotalExpectedReturnAmount 预期回款总额（仅用于展示）
// 已封闭时按实际出资计算，否则按募集目标计算
func (f *Fund) GetTotalExpectedReturnAmount() decimal.Decimal {
	base := f.TargetAmount
	if f.ClosedAt != nil {
		base = f.InvestedAmount
	}
	return base.Mul(decimal.NewFromInt(1).Add(f.Interest))
}

// GetExpectedReturnAmount 某一本金的预期回款，截断到最小货币单位
func (f *Fund) GetExpectedReturnAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Add(f.Interest)).Truncate(0)
}

// GetClosedUntil 封闭期截止日 = closedAt + period 天
func (f *Fund) GetClosedUntil() (time.Time, error) {
	if f.ClosedAt == nil {
		return time.Time{}, ErrNotClosed
	}
	return f.ClosedAt.AddDate(0, 0, f.Period), nil
}
