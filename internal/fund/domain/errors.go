package domain

import "errors"

var (
	// ErrInvalidState 当前状态不允许该操作
	ErrInvalidState = errors.New("invalid fund state")
	// ErrEmptyFund 不能封闭没有任何投资的基金
	ErrEmptyFund = errors.New("cannot close empty fund")
	// ErrTargetExceeded 出资会超过募集目标
	ErrTargetExceeded = errors.New("target amount exceeded")
	// ErrInvalidInvestor 账户在该基金内没有头寸
	ErrInvalidInvestor = errors.New("invalid investor")
	// ErrNotClosed 基金从未封闭，封闭期查询无意义
	ErrNotClosed = errors.New("fund is not closed")
	// ErrInvalidAmount 金额必须为正且不超过可操作余额
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrFundNotFound 基金不存在（由仓储层返回）
	ErrFundNotFound = errors.New("fund not found")
	// ErrTitleNotUnique 基金标题已存在（由仓储层翻译唯一约束冲突）
	ErrTitleNotUnique = errors.New("fund title is not unique")
)
