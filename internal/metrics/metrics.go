// Package metrics exposes the counters the sync layer and gateway report.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RankingRefreshes counts rankings recomputations by trigger (poll, push).
	RankingRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizlive_ranking_refreshes_total",
		Help: "Number of rankings refreshes, labelled by trigger.",
	}, []string{"trigger"})

	// AnswersPersisted counts answer records written to the shared store.
	AnswersPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizlive_answers_persisted_total",
		Help: "Number of answer records persisted.",
	})

	// PersistFailures counts best-effort writes that were logged and dropped.
	PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizlive_persist_failures_total",
		Help: "Number of best-effort persistence failures, labelled by operation.",
	}, []string{"op"})

	// WSConnections counts websocket rankings-feed connections opened.
	WSConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizlive_ws_connections_total",
		Help: "Number of websocket rankings-feed connections accepted.",
	})
)
