// 包 mysql 基于 GORM 的基金聚合仓储实现
package mysql

import (
	"context"
	"errors"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/wyfcoding/fundpooling/internal/fund/domain"
	"github.com/wyfcoding/fundpooling/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MySQL 错误码 1062：唯一键冲突
const errDupEntry = 1062

// fundRepository GORM 基金仓储实现
type fundRepository struct {
	db *db.DB
}

// NewFundRepository 创建基金仓储
func NewFundRepository(database *db.DB) domain.FundRepository {
	return &fundRepository{db: database}
}

// translateDuplicate 按索引名翻译唯一键冲突
// 事务内同时落库基金行与头寸行（头寸带 ux_fund_account 唯一索引），
// 只有 ux_fund_title 上的冲突才是标题冲突，其余冲突原样返回
func translateDuplicate(err error) error {
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == errDupEntry &&
		strings.Contains(mysqlErr.Message, "ux_fund_title") {
		return domain.ErrTitleNotUnique
	}
	return err
}

func (r *fundRepository) Create(ctx context.Context, fund *domain.Fund) error {
	if err := r.db.WithContext(ctx).Create(fund).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *fundRepository) Get(ctx context.Context, fundID string) (*domain.Fund, error) {
	var fund domain.Fund

	err := r.db.WithContext(ctx).
		Preload("Investors").
		Where("fund_id = ?", fundID).
		First(&fund).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFundNotFound
		}
		return nil, err
	}

	return &fund, nil
}

// Update 在 FOR UPDATE 行锁与事务内加载聚合并执行 fn
// 一次逻辑操作产生的全部变更（状态、头寸增量、新流水/回款/转账）
// 通过 FullSaveAssociations 在同一事务内整体落库；
// fn 返回错误时事务回滚，聚合不发生任何持久化
func (r *fundRepository) Update(ctx context.Context, fundID string, fn func(*domain.Fund) error) (*domain.Fund, error) {
	var fund *domain.Fund

	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		var f domain.Fund

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Investors").
			Where("fund_id = ?", fundID).
			First(&f).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrFundNotFound
			}
			return err
		}

		if err := fn(&f); err != nil {
			return err
		}

		err = tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&f).Error
		if err != nil {
			return translateDuplicate(err)
		}

		fund = &f
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fund, nil
}

// ListInvestors 分页列出头寸，活跃过滤下推到查询，避免整表加载
func (r *fundRepository) ListInvestors(ctx context.Context, fundID string, onlyActive bool, limit, offset int) ([]*domain.Investor, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Investor{}).
		Where("fund_id = ?", fundID)

	if onlyActive {
		query = query.Where("invested_amount > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var investors []*domain.Investor
	err := query.Order("id").Limit(limit).Offset(offset).Find(&investors).Error
	if err != nil {
		return nil, 0, err
	}

	return investors, total, nil
}

// ListMatured 查询封闭期已结束、仍处于 CLOSED 的基金
func (r *fundRepository) ListMatured(ctx context.Context, asOf time.Time, limit int) ([]string, error) {
	var fundIDs []string

	err := r.db.WithContext(ctx).
		Model(&domain.Fund{}).
		Where("state = ?", domain.FundClosed).
		Where("DATE_ADD(closed_at, INTERVAL period DAY) <= ?", asOf).
		Order("closed_at").
		Limit(limit).
		Pluck("fund_id", &fundIDs).Error
	if err != nil {
		return nil, err
	}

	return fundIDs, nil
}

func (r *fundRepository) ListPayments(ctx context.Context, fundID string, limit, offset int) ([]*domain.Payment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("fund_id = ?", fundID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []*domain.Payment
	err := query.Preload("Payouts").Order("id").Limit(limit).Offset(offset).Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}
