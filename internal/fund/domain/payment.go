package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/fundpooling/pkg/idgen"
	"gorm.io/gorm"
)

// Payment 封闭基金上的一次回款分配事件，创建后不可变
// Payouts 之和可能小于 Amount（逐人向下取整产生的尾差不再分配）
type Payment struct {
	gorm.Model
	// 回款 ID (业务主键)
	PaymentID string `gorm:"column:payment_id;type:varchar(32);uniqueIndex;not null" json:"payment_id"`
	// 所属基金
	FundID string `gorm:"column:fund_id;type:varchar(32);index;not null" json:"fund_id"`
	// 名义总额（最小货币单位）
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(32,0);not null" json:"amount"`
	// 关联的出账转账
	TransferID string `gorm:"column:transfer_id;type:varchar(32);not null" json:"transfer_id"`
	// 各投资人份额
	Payouts []*Payout `gorm:"foreignKey:PaymentID;references:PaymentID" json:"payouts,omitempty"`
}

// TableName 指定表名
func (Payment) TableName() string { return "fund_payments" }

// NewPayment 创建回款记录
func NewPayment(fundID string, amount decimal.Decimal) *Payment {
	return &Payment{
		PaymentID: fmt.Sprintf("PAY-%d", idgen.Next()),
		FundID:    fundID,
		Amount:    amount,
	}
}

// addPayout 为一个投资人附加份额
func (p *Payment) addPayout(investorID, accountID string, amount decimal.Decimal) *Payout {
	payout := &Payout{
		PaymentID:  p.PaymentID,
		InvestorID: investorID,
		AccountID:  accountID,
		Amount:     amount,
	}
	p.Payouts = append(p.Payouts, payout)

	return payout
}

// DistributedAmount 实际分配给投资人的总额
func (p *Payment) DistributedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, payout := range p.Payouts {
		total = total.Add(payout.Amount)
	}
	return total
}

// Remainder 取整后留存在结算账户的尾差
func (p *Payment) Remainder() decimal.Decimal {
	return p.Amount.Sub(p.DistributedAmount())
}

// Payout 一个投资人在一次回款中的份额
type Payout struct {
	gorm.Model
	// 所属回款
	PaymentID string `gorm:"column:payment_id;type:varchar(32);index;not null" json:"payment_id"`
	// 对应头寸
	InvestorID string `gorm:"column:investor_id;type:varchar(32);index;not null" json:"investor_id"`
	// 外部账户
	AccountID string `gorm:"column:account_id;type:varchar(32);index;not null" json:"account_id"`
	// 份额金额
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(32,0);not null" json:"amount"`
}

// TableName 指定表名
func (Payout) TableName() string { return "fund_payouts" }
