package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFund(state FundState) *Fund {
	f := NewFund("FND-1", "ACC-SETTLE", "Alpha Fund", "pooled btc fund", 30,
		decimal.RequireFromString("0.08"), decimal.NewFromInt(1000), CurrencyBTC)
	f.State = state
	return f
}

// addPosition 直接构造一条已加载的头寸，模拟从仓储整体加载的聚合
func addPosition(f *Fund, accountID string, amount int64) *Investor {
	investor := NewInvestor(f.FundID, accountID)
	investor.InvestedAmount = decimal.NewFromInt(amount)
	f.Investors = append(f.Investors, investor)
	f.InvestedAmount = f.InvestedAmount.Add(investor.InvestedAmount)
	return investor
}

func TestNewFund_StartsOpen(t *testing.T) {
	f := testFund(FundOpen)

	assert.Equal(t, FundOpen, f.State)
	assert.True(t, f.InvestedAmount.IsZero())
	assert.True(t, f.ReturnedAmount.IsZero())
	assert.Nil(t, f.ClosedAt)
	assert.Nil(t, f.FinishedAt)
	assert.Nil(t, f.CancelledAt)
}

func TestClose_CreatesConfirmedDepositTransfer(t *testing.T) {
	f := testFund(FundOpen)
	addPosition(f, "ACC-A", 400)

	err := f.Close()
	require.NoError(t, err)

	assert.Equal(t, FundClosed, f.State)
	require.NotNil(t, f.ClosedAt)

	require.Len(t, f.Transfers, 1)
	transfer := f.Transfers[0]
	assert.Equal(t, TransferDeposit, transfer.Type)
	assert.Equal(t, TransferConfirmed, transfer.Status)
	assert.Equal(t, "ACC-SETTLE", transfer.AccountID)
	assert.Equal(t, CurrencyBTC, transfer.Currency)
	assert.True(t, transfer.Amount.Equal(decimal.NewFromInt(400)))
	assert.Equal(t, transfer.TransferID, f.DepositTransferID)
}

func TestClose_EmptyFund(t *testing.T) {
	f := testFund(FundOpen)

	err := f.Close()

	assert.ErrorIs(t, err, ErrEmptyFund)
	assert.Equal(t, FundOpen, f.State)
	assert.Nil(t, f.ClosedAt)
	assert.Empty(t, f.Transfers)
}

func TestStateMachine_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state FundState
		op    func(*Fund) error
	}{
		{"close from closed", FundClosed, func(f *Fund) error { return f.Close() }},
		{"close from finished", FundFinished, func(f *Fund) error { return f.Close() }},
		{"close from cancelled", FundCancelled, func(f *Fund) error { return f.Close() }},
		{"finish from open", FundOpen, func(f *Fund) error { return f.Finish() }},
		{"finish from finished", FundFinished, func(f *Fund) error { return f.Finish() }},
		{"finish from cancelled", FundCancelled, func(f *Fund) error { return f.Finish() }},
		{"cancel from closed", FundClosed, func(f *Fund) error { _, err := f.Cancel(); return err }},
		{"cancel from finished", FundFinished, func(f *Fund) error { _, err := f.Cancel(); return err }},
		{"cancel from cancelled", FundCancelled, func(f *Fund) error { _, err := f.Cancel(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFund(tt.state)
			addPosition(f, "ACC-A", 100)

			err := tt.op(f)

			assert.ErrorIs(t, err, ErrInvalidState)
			assert.Equal(t, tt.state, f.State)
		})
	}
}

func TestFinish_FromClosed(t *testing.T) {
	f := testFund(FundClosed)

	err := f.Finish()
	require.NoError(t, err)

	assert.Equal(t, FundFinished, f.State)
	assert.NotNil(t, f.FinishedAt)
}

func TestCancel_RefundsActiveInvestors(t *testing.T) {
	f := testFund(FundOpen)
	addPosition(f, "ACC-A", 300)
	addPosition(f, "ACC-B", 700)

	refunds, err := f.Cancel()
	require.NoError(t, err)

	assert.Equal(t, FundCancelled, f.State)
	assert.NotNil(t, f.CancelledAt)
	assert.True(t, f.InvestedAmount.IsZero())

	for _, investor := range f.Investors {
		assert.True(t, investor.InvestedAmount.IsZero())
	}

	require.Len(t, refunds, 2)
	assert.True(t, refunds[0].Amount.Equal(decimal.NewFromInt(-300)))
	assert.True(t, refunds[1].Amount.Equal(decimal.NewFromInt(-700)))
}

func TestCancel_SkipsZeroedPositions(t *testing.T) {
	f := testFund(FundOpen)
	addPosition(f, "ACC-A", 500)
	addPosition(f, "ACC-B", 0)

	refunds, err := f.Cancel()
	require.NoError(t, err)

	require.Len(t, refunds, 1)
	assert.Equal(t, "ACC-A", refunds[0].AccountID)
}

func TestAddFunds_RejectedWhileOpen(t *testing.T) {
	f := testFund(FundOpen)

	_, err := f.AddFunds("ACC-A", decimal.NewFromInt(100))

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.True(t, f.InvestedAmount.IsZero())
	assert.Empty(t, f.Investors)
}

func TestAddFunds_TargetBoundary(t *testing.T) {
	f := testFund(FundClosed)
	addPosition(f, "ACC-A", 900)

	_, err := f.AddFunds("ACC-B", decimal.NewFromInt(101))
	assert.ErrorIs(t, err, ErrTargetExceeded)
	// 失败不得留下任何痕迹
	assert.True(t, f.InvestedAmount.Equal(decimal.NewFromInt(900)))
	assert.Len(t, f.Investors, 1)

	investment, err := f.AddFunds("ACC-B", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, f.InvestedAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, investment.Amount.Equal(decimal.NewFromInt(100)))
}

func TestAddFunds_SinglePositionPerAccount(t *testing.T) {
	f := testFund(FundClosed)

	_, err := f.AddFunds("ACC-A", decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = f.AddFunds("ACC-A", decimal.NewFromInt(50))
	require.NoError(t, err)

	require.Len(t, f.Investors, 1)
	assert.True(t, f.Investors[0].InvestedAmount.Equal(decimal.NewFromInt(150)))
	assert.Len(t, f.Investors[0].Investments, 2)
}

func TestAddFunds_NonPositiveAmount(t *testing.T) {
	f := testFund(FundClosed)

	_, err := f.AddFunds("ACC-A", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.AddFunds("ACC-A", decimal.NewFromInt(-10))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRemoveFunds_UnknownInvestor(t *testing.T) {
	f := testFund(FundClosed)
	addPosition(f, "ACC-A", 100)

	_, err := f.RemoveFunds("ACC-UNKNOWN", decimal.NewFromInt(10))

	assert.ErrorIs(t, err, ErrInvalidInvestor)
	assert.True(t, f.InvestedAmount.Equal(decimal.NewFromInt(100)))
}

func TestRemoveFunds_CannotOverdraw(t *testing.T) {
	f := testFund(FundClosed)
	investor := addPosition(f, "ACC-A", 100)

	_, err := f.RemoveFunds("ACC-A", decimal.NewFromInt(101))

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, investor.InvestedAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, f.InvestedAmount.Equal(decimal.NewFromInt(100)))
}

func TestRemoveFunds_ZeroesPositionButKeepsIt(t *testing.T) {
	f := testFund(FundClosed)
	addPosition(f, "ACC-A", 100)

	investment, err := f.RemoveFunds("ACC-A", decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.True(t, investment.Amount.Equal(decimal.NewFromInt(-100)))
	assert.True(t, f.InvestedAmount.IsZero())
	// 头寸归零但保留，维持审计连续性
	require.Len(t, f.Investors, 1)
	assert.False(t, f.Investors[0].Active())
}

// 任意出入金序列后，出资总额始终等于各头寸之和且不超过目标
func TestLedgerInvariant_AddRemoveSequence(t *testing.T) {
	f := testFund(FundClosed)

	steps := []struct {
		account string
		amount  int64 // 负数表示撤资
	}{
		{"ACC-A", 100},
		{"ACC-B", 250},
		{"ACC-A", -40},
		{"ACC-C", 500},
		{"ACC-B", -250},
		{"ACC-A", 140},
		{"ACC-C", -1},
	}

	for _, step := range steps {
		var err error
		if step.amount > 0 {
			_, err = f.AddFunds(step.account, decimal.NewFromInt(step.amount))
		} else {
			_, err = f.RemoveFunds(step.account, decimal.NewFromInt(-step.amount))
		}
		require.NoError(t, err)

		sum := decimal.Zero
		for _, investor := range f.Investors {
			sum = sum.Add(investor.InvestedAmount)
		}
		assert.True(t, f.InvestedAmount.Equal(sum),
			"invested %s != position sum %s", f.InvestedAmount, sum)
		assert.True(t, f.InvestedAmount.LessThanOrEqual(f.TargetAmount))
		assert.False(t, f.InvestedAmount.IsNegative())
	}
}

func TestAddPayment_ProRataDistribution(t *testing.T) {
	f := testFund(FundClosed)
	addPosition(f, "ACC-A", 100)
	addPosition(f, "ACC-B", 200)

	payment, err := f.AddPayment(decimal.NewFromInt(100))
	require.NoError(t, err)

	require.Len(t, payment.Payouts, 2)
	assert.True(t, payment.Payouts[0].Amount.Equal(decimal.NewFromInt(33)),
		"A expected 33, got %s", payment.Payouts[0].Amount)
	assert.True(t, payment.Payouts[1].Amount.Equal(decimal.NewFromInt(66)),
		"B expected 66, got %s", payment.Payouts[1].Amount)

	// 逐人向下取整：分配 99，尾差 1 不再分配
	assert.True(t, payment.DistributedAmount().Equal(decimal.NewFromInt(99)))
	assert.True(t, payment.Remainder().Equal(decimal.NewFromInt(1)))

	// 已回款按名义总额累计，而非截断后之和
	assert.True(t, f.ReturnedAmount.Equal(decimal.NewFromInt(100)))

	require.Len(t, f.Payments, 1)
	require.Len(t, f.Transfers, 1)
	assert.Equal(t, TransferPayout, f.Transfers[0].Type)
	assert.Equal(t, TransferConfirmed, f.Transfers[0].Status)
	assert.True(t, f.Transfers[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, f.Transfers[0].TransferID, payment.TransferID)
}

func TestAddPayment_OnlyWhenClosed(t *testing.T) {
	for _, state := range []FundState{FundOpen, FundFinished, FundCancelled} {
		f := testFund(state)
		addPosition(f, "ACC-A", 100)

		_, err := f.AddPayment(decimal.NewFromInt(10))

		assert.ErrorIs(t, err, ErrInvalidState, "state %s", state)
		assert.True(t, f.ReturnedAmount.IsZero())
		assert.Empty(t, f.Payments)
	}
}

func TestAddPayment_SkipsInactiveInvestors(t *testing.T) {
	f := testFund(FundClosed)
	addPosition(f, "ACC-A", 300)
	addPosition(f, "ACC-B", 0)

	payment, err := f.AddPayment(decimal.NewFromInt(90))
	require.NoError(t, err)

	require.Len(t, payment.Payouts, 1)
	assert.Equal(t, "ACC-A", payment.Payouts[0].AccountID)
	assert.True(t, payment.Payouts[0].Amount.Equal(decimal.NewFromInt(90)))
}

func TestAddPayment_SingleInvestorNoRemainder(t *testing.T) {
	f := testFund(FundClosed)
	addPosition(f, "ACC-A", 700)

	payment, err := f.AddPayment(decimal.NewFromInt(57))
	require.NoError(t, err)

	assert.True(t, payment.DistributedAmount().Equal(decimal.NewFromInt(57)))
	assert.True(t, payment.Remainder().IsZero())
}

func TestGetInvestors_Filtering(t *testing.T) {
	f := testFund(FundClosed)
	addPosition(f, "ACC-A", 100)
	addPosition(f, "ACC-B", 0)
	addPosition(f, "ACC-C", 50)

	active := f.GetInvestors(true)
	require.Len(t, active, 2)
	for _, investor := range active {
		assert.True(t, investor.InvestedAmount.IsPositive())
	}

	all := f.GetInvestors(false)
	assert.Len(t, all, 3)
}

func TestGetInvestor_LazyCreation(t *testing.T) {
	f := testFund(FundClosed)

	assert.Nil(t, f.GetInvestor("ACC-A", false))

	created := f.GetInvestor("ACC-A", true)
	require.NotNil(t, created)
	assert.True(t, created.InvestedAmount.IsZero())

	// 再次查找返回同一头寸
	assert.Same(t, created, f.GetInvestor("ACC-A", true))
	assert.Len(t, f.Investors, 1)
}

func TestGetTotalExpectedReturnAmount(t *testing.T) {
	f := testFund(FundOpen)
	addPosition(f, "ACC-A", 500)

	// 未封闭：按募集目标计算 1000 * 1.08
	assert.True(t, f.GetTotalExpectedReturnAmount().Equal(decimal.RequireFromString("1080")))

	now := time.Now()
	f.ClosedAt = &now

	// 已封闭：按实际出资计算 500 * 1.08
	assert.True(t, f.GetTotalExpectedReturnAmount().Equal(decimal.RequireFromString("540")))
}

func TestGetExpectedReturnAmount_TruncatesToMinorUnit(t *testing.T) {
	f := testFund(FundOpen)

	// 99 * 1.08 = 106.92 → 106
	assert.True(t, f.GetExpectedReturnAmount(decimal.NewFromInt(99)).Equal(decimal.NewFromInt(106)))
}

func TestGetClosedUntil(t *testing.T) {
	f := testFund(FundOpen)

	_, err := f.GetClosedUntil()
	assert.ErrorIs(t, err, ErrNotClosed)

	closedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.ClosedAt = &closedAt

	until, err := f.GetClosedUntil()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC), until)
}
