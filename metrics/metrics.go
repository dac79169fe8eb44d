package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betting_matches_finalized_total",
		Help: "Number of match results entered or corrected.",
	})

	BetsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betting_bets_scored_total",
		Help: "Number of bets rescored by the scoring engine.",
	})

	SlotsPropagated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betting_slots_propagated_total",
		Help: "Number of dependent matches updated by outcome propagation.",
	})

	AuditRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betting_audit_runs_total",
		Help: "Number of points audit runs.",
	})

	AuditDiscrepancies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betting_audit_discrepancies_total",
		Help: "Number of stored-vs-recomputed point mismatches found by audits.",
	})
)
