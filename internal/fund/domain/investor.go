package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/fundpooling/pkg/idgen"
	"gorm.io/gorm"
)

// Investor 投资人头寸
// 每个 (基金, 账户) 组合最多一条，首次出资时惰性创建；
// 头寸可以归零（表示已退出），但永不删除，以保留审计连续性
type Investor struct {
	gorm.Model
	// 头寸 ID (业务主键)
	InvestorID string `gorm:"column:investor_id;type:varchar(32);uniqueIndex;not null" json:"investor_id"`
	// 所属基金
	FundID string `gorm:"column:fund_id;type:varchar(32);uniqueIndex:ux_fund_account;not null" json:"fund_id"`
	// 外部账户
	AccountID string `gorm:"column:account_id;type:varchar(32);uniqueIndex:ux_fund_account;index;not null" json:"account_id"`
	// 当前出资额（最小货币单位，永不为负）
	InvestedAmount decimal.Decimal `gorm:"column:invested_amount;type:decimal(32,0);default:0;not null" json:"invested_amount"`
	// 出入金流水
	Investments []*Investment `gorm:"foreignKey:InvestorID;references:InvestorID" json:"investments,omitempty"`
}

// TableName 指定表名
func (Investor) TableName() string { return "fund_investors" }

// NewInvestor 创建空头寸
func NewInvestor(fundID, accountID string) *Investor {
	return &Investor{
		InvestorID:     fmt.Sprintf("IVR-%d", idgen.Next()),
		FundID:         fundID,
		AccountID:      accountID,
		InvestedAmount: decimal.Zero,
	}
}

// Active 头寸是否仍有出资
func (i *Investor) Active() bool {
	return i.InvestedAmount.IsPositive()
}

// addInvestment 以带符号金额调整头寸并生成一条不可变流水
func (i *Investor) addInvestment(amount decimal.Decimal) *Investment {
	i.InvestedAmount = i.InvestedAmount.Add(amount)

	investment := &Investment{
		InvestmentID: fmt.Sprintf("INV-%d", idgen.Next()),
		InvestorID:   i.InvestorID,
		FundID:       i.FundID,
		AccountID:    i.AccountID,
		Amount:       amount,
	}
	i.Investments = append(i.Investments, investment)

	return investment
}

// Investment 一次出资或撤资的不可变流水记录
// Amount 带符号：出资为正，撤资/退款为负；创建时间即事件时间
type Investment struct {
	gorm.Model
	// 流水 ID (业务主键)
	InvestmentID string `gorm:"column:investment_id;type:varchar(32);uniqueIndex;not null" json:"investment_id"`
	// 所属头寸
	InvestorID string `gorm:"column:investor_id;type:varchar(32);index;not null" json:"investor_id"`
	// 所属基金
	FundID string `gorm:"column:fund_id;type:varchar(32);index;not null" json:"fund_id"`
	// 外部账户
	AccountID string `gorm:"column:account_id;type:varchar(32);index;not null" json:"account_id"`
	// 带符号金额
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(32,0);not null" json:"amount"`
}

// TableName 指定表名
func (Investment) TableName() string { return "fund_investments" }
