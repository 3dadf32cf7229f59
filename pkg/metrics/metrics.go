// Package metrics 提供 Prometheus helper，聚焦基金池业务指标与数据库指标
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// 基金生命周期
	FundsCreated   prometheus.Counter
	FundsClosed    prometheus.Counter
	FundsFinished  prometheus.Counter
	FundsCancelled prometheus.Counter

	// 出入金
	InvestmentsAdded   prometheus.Counter
	InvestmentsRemoved prometheus.Counter

	// 回款分配
	PaymentsTotal prometheus.Counter
	// 已分配给投资人的回款总额（最小货币单位）
	PayoutAmountTotal prometheus.Counter
	// 因向下取整而留存在结算账户的尾差总额（最小货币单位）
	PayoutRemainderTotal prometheus.Counter

	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram
}

// New 创建指标实例并注册到独立 Registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FundsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "funds_created_total",
			Help:      "Total funds created",
		}),
		FundsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "funds_closed_total",
			Help:      "Total funds closed",
		}),
		FundsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "funds_finished_total",
			Help:      "Total funds finished",
		}),
		FundsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "funds_cancelled_total",
			Help:      "Total funds cancelled",
		}),
		InvestmentsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "investments_added_total",
			Help:      "Total contributions recorded",
		}),
		InvestmentsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "investments_removed_total",
			Help:      "Total withdrawals recorded",
		}),
		PaymentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "payments_total",
			Help:      "Total payments distributed",
		}),
		PayoutAmountTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "payout_amount_total",
			Help:      "Total amount distributed to investors in minor units",
		}),
		PayoutRemainderTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "payout_remainder_total",
			Help:      "Undistributed truncation remainder in minor units",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fundpooling",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.FundsCreated,
		m.FundsClosed,
		m.FundsFinished,
		m.FundsCancelled,
		m.InvestmentsAdded,
		m.InvestmentsRemoved,
		m.PaymentsTotal,
		m.PayoutAmountTotal,
		m.PayoutRemainderTotal,
		m.DBQueryDuration,
	)

	return m
}

// Handler 返回 Prometheus 抓取端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewServer 创建指标 HTTP 服务
func (m *Metrics) NewServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
}
