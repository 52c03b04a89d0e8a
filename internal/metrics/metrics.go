// Package metrics パイプライン全体のPrometheusコレクターを集約する
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts エンドポイント別の取得試行回数
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityscape_fetch_attempts_total",
		Help: "Number of fetch attempts by endpoint.",
	}, []string{"endpoint"})

	// FetchRetries 原因別のリトライ回数
	FetchRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityscape_fetch_retries_total",
		Help: "Number of fetch retries by cause.",
	}, []string{"cause"})

	// FetchFailures リトライ枯渇による最終失敗回数
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityscape_fetch_failures_total",
		Help: "Number of exhausted fetches by cause.",
	}, []string{"cause"})

	// FetchDuration 取得全体の所要時間
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cityscape_fetch_duration_seconds",
		Help:    "Wall-clock duration of whole fetch operations.",
		Buckets: prometheus.DefBuckets,
	})

	// ParsedElements パース済み要素数（node/way別）
	ParsedElements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityscape_parsed_elements_total",
		Help: "Number of parsed raw elements by type.",
	}, []string{"type"})

	// SynthesisBuilt 種別ごとの合成成功件数
	SynthesisBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityscape_synthesis_built_total",
		Help: "Number of successfully synthesized geometries by kind.",
	}, []string{"kind"})

	// SynthesisSkipped 種別ごとの合成スキップ件数
	SynthesisSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityscape_synthesis_skipped_total",
		Help: "Number of skipped geometries by kind.",
	}, []string{"kind"})

	// CacheHits データセットキャッシュのヒット数
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cityscape_dataset_cache_hits_total",
		Help: "Number of dataset cache hits.",
	})
)
