package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Iterations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_iterations_total",
		Help: "Loop iterations by outcome",
	}, []string{"outcome"})

	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_submissions_total",
		Help: "Submitted transactions by kind and result",
	}, []string{"kind", "result"})

	DiffPrice = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_diff_price",
		Help: "Last observed price difference between venue A and venue B",
	})

	ExpectedProfit = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_expected_profit_token0",
		Help: "Net expected profit of the last evaluated opportunity in token0",
	})

	ContractBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_contract_balance_token0",
		Help: "Execution contract token0 balance snapshot",
	})

	GasPriceWei = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_gas_price_wei",
		Help: "Gas price used for the last estimate",
	})

	EvaluateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arb_evaluate_latency_seconds",
		Help:    "Time to evaluate one iteration, including any funding transfer",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		Iterations,
		Submissions,
		DiffPrice,
		ExpectedProfit,
		ContractBalance,
		GasPriceWei,
		EvaluateLatency,
	)
}
