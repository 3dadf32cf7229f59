package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/fundpooling/pkg/idgen"
	"gorm.io/gorm"
)

// Currency 币种，作为有限集合显式传入转账创建，不依赖全局状态
type Currency string

const (
	CurrencyBTC Currency = "BTC"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Valid 判断币种是否在支持集合内
func (c Currency) Valid() bool {
	switch c {
	case CurrencyBTC, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// TransferType 资金流向类型
type TransferType string

const (
	// TransferDeposit 封闭时募集资金入账
	TransferDeposit TransferType = "DEPOSIT"
	// TransferPayout 回款时向投资人出账
	TransferPayout TransferType = "PAYOUT"
)

// TransferStatus 转账状态
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferConfirmed TransferStatus = "CONFIRMED"
)

// Transfer 针对结算账户的一次定向资金移动记录
// 基金核心只负责创建，执行与对账由账户侧处理
type Transfer struct {
	gorm.Model
	// 转账 ID (业务主键)
	TransferID string `gorm:"column:transfer_id;type:varchar(32);uniqueIndex;not null" json:"transfer_id"`
	// 所属基金
	FundID string `gorm:"column:fund_id;type:varchar(32);index;not null" json:"fund_id"`
	// 结算账户
	AccountID string `gorm:"column:account_id;type:varchar(32);index;not null" json:"account_id"`
	// 类型（DEPOSIT, PAYOUT）
	Type TransferType `gorm:"column:type;type:varchar(20);not null" json:"type"`
	// 金额（最小货币单位）
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(32,0);not null" json:"amount"`
	// 币种
	Currency Currency `gorm:"column:currency;type:varchar(10);not null" json:"currency"`
	// 状态
	Status TransferStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
}

// TableName 指定表名
func (Transfer) TableName() string { return "fund_transfers" }

// NewTransfer 创建转账记录，初始状态为 PENDING
func NewTransfer(fundID, accountID string, transferType TransferType, amount decimal.Decimal, currency Currency) *Transfer {
	return &Transfer{
		TransferID: fmt.Sprintf("TRF-%d", idgen.Next()),
		FundID:     fundID,
		AccountID:  accountID,
		Type:       transferType,
		Amount:     amount,
		Currency:   currency,
		Status:     TransferPending,
	}
}

// Confirm 确认转账
func (t *Transfer) Confirm() {
	t.Status = TransferConfirmed
}
