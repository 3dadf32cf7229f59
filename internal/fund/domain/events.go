package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundEvent 基金领域事件接口
type FundEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

type BaseEvent struct {
	FundID    string    `json:"fund_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) AggregateID() string {
	return e.FundID
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// FundCreatedEvent 基金创建事件
type FundCreatedEvent struct {
	BaseEvent
	Title        string          `json:"title"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Currency     Currency        `json:"currency"`
}

func (e FundCreatedEvent) EventType() string { return "FundCreated" }

// FundClosedEvent 基金封闭事件
type FundClosedEvent struct {
	BaseEvent
	InvestedAmount decimal.Decimal `json:"invested_amount"`
	ClosedUntil    time.Time       `json:"closed_until"`
}

func (e FundClosedEvent) EventType() string { return "FundClosed" }

// FundFinishedEvent 基金结束事件
type FundFinishedEvent struct {
	BaseEvent
	ReturnedAmount decimal.Decimal `json:"returned_amount"`
}

func (e FundFinishedEvent) EventType() string { return "FundFinished" }

// FundCancelledEvent 基金取消事件
type FundCancelledEvent struct {
	BaseEvent
	// 取消时退还的出资总额
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	RefundCount    int             `json:"refund_count"`
}

func (e FundCancelledEvent) EventType() string { return "FundCancelled" }

// FundsAddedEvent 出资事件
type FundsAddedEvent struct {
	BaseEvent
	AccountID      string          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	InvestedAmount decimal.Decimal `json:"invested_amount"`
}

func (e FundsAddedEvent) EventType() string { return "FundsAdded" }

// FundsRemovedEvent 撤资事件
type FundsRemovedEvent struct {
	BaseEvent
	AccountID      string          `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	InvestedAmount decimal.Decimal `json:"invested_amount"`
}

func (e FundsRemovedEvent) EventType() string { return "FundsRemoved" }

// PaymentCreatedEvent 回款分配事件
type PaymentCreatedEvent struct {
	BaseEvent
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	// 实际分配给投资人的总额（截断后）
	DistributedAmount decimal.Decimal `json:"distributed_amount"`
	PayoutCount       int             `json:"payout_count"`
}

func (e PaymentCreatedEvent) EventType() string { return "PaymentCreated" }
