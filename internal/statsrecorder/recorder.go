// Package statsrecorder exposes per-asset state values as Prometheus
// gauges, built on github.com/prometheus/client_golang.
package statsrecorder

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abdoElHodaky/hftbacktest/internal/multiasset"
)

// Recorder implements prometheus.Collector over a multiasset.Book's
// runtimes, sampling StateValues() on every Collect call rather than
// pushing a metric write on every fill, to keep the replay loop free of
// per-event allocation.
type Recorder struct {
	book *multiasset.Book
	name func(idx int) string

	position   *prometheus.Desc
	balance    *prometheus.Desc
	fee        *prometheus.Desc
	tradeNum   *prometheus.Desc
	tradeQty   *prometheus.Desc
	tradeValue *prometheus.Desc
}

// New builds a Recorder over book. name maps an asset index to its label
// value (typically the symbol); pass nil to label by numeric index.
func New(book *multiasset.Book, name func(idx int) string) *Recorder {
	if name == nil {
		name = strconv.Itoa
	}
	return &Recorder{
		book: book,
		name: name,
		position:   prometheus.NewDesc("hftbacktest_position", "Current asset position.", []string{"asset"}, nil),
		balance:    prometheus.NewDesc("hftbacktest_balance", "Current cash balance.", []string{"asset"}, nil),
		fee:        prometheus.NewDesc("hftbacktest_cumulative_fee", "Cumulative fees paid.", []string{"asset"}, nil),
		tradeNum:   prometheus.NewDesc("hftbacktest_trade_count", "Cumulative trade count.", []string{"asset"}, nil),
		tradeQty:   prometheus.NewDesc("hftbacktest_trade_qty", "Cumulative traded quantity.", []string{"asset"}, nil),
		tradeValue: prometheus.NewDesc("hftbacktest_trade_notional", "Cumulative traded notional.", []string{"asset"}, nil),
	}
}

func (r *Recorder) Describe(ch chan<- *prometheus.Desc) {
	ch <- r.position
	ch <- r.balance
	ch <- r.fee
	ch <- r.tradeNum
	ch <- r.tradeQty
	ch <- r.tradeValue
}

func (r *Recorder) Collect(ch chan<- prometheus.Metric) {
	for i, rt := range r.book.Runtimes() {
		label := r.name(i)
		s := rt.StateValues()
		ch <- prometheus.MustNewConstMetric(r.position, prometheus.GaugeValue, s.Position, label)
		ch <- prometheus.MustNewConstMetric(r.balance, prometheus.GaugeValue, s.Balance, label)
		ch <- prometheus.MustNewConstMetric(r.fee, prometheus.GaugeValue, s.Fee, label)
		ch <- prometheus.MustNewConstMetric(r.tradeNum, prometheus.CounterValue, float64(s.TradeNum), label)
		ch <- prometheus.MustNewConstMetric(r.tradeQty, prometheus.CounterValue, s.TradeQty, label)
		ch <- prometheus.MustNewConstMetric(r.tradeValue, prometheus.CounterValue, s.TradeAmount, label)
	}
}
