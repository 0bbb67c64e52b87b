package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "verdict_live_sessions",
		Help: "Decision matrices currently held in memory.",
	})

	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verdict_sessions_created_total",
		Help: "Sessions created.",
	})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verdict_mutations_total",
		Help: "Matrix mutations by change kind and outcome (applied, rejected, failed).",
	}, []string{"change", "outcome"})

	evictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verdict_evictions_total",
		Help: "Sessions dropped from memory by reason (idle, capacity, admin).",
	}, []string{"reason"})
)
