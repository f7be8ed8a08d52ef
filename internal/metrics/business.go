// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus metrics for the XMLTV import pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Programme outcomes.
const (
	OutcomeStored    = "stored"
	OutcomeStale     = "stale"
	OutcomeTooFar    = "too_far"
	OutcomeUnmapped  = "unmapped"
	OutcomeNoChannel = "no_channel"
	OutcomeBadTime   = "bad_time"
	OutcomeNoTitle   = "no_title"
	OutcomeNoEventID = "no_event_id"
)

var (
	programmesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xmltv2db_programmes_total",
		Help: "Programme elements seen, by outcome",
	}, []string{"outcome"}) // outcome=stored|stale|too_far|unmapped|no_channel|bad_time|no_title|no_event_id

	statementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xmltv2db_statements_total",
		Help: "Statements applied to the database, by kind",
	}, []string{"kind"}) // kind=insert|update

	storeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xmltv2db_store_errors_total",
		Help: "Total number of failed statement applications",
	})

	episodeLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xmltv2db_episode_lookups_total",
		Help: "Episode list lookups by result",
	}, []string{"result"}) // result=found|not_found

	importRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xmltv2db_import_runs_total",
		Help: "Import passes by result",
	}, []string{"result"}) // result=success|failure|stopped

	importDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "xmltv2db_import_duration_seconds",
		Help:    "Duration of one import pass",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	lastImportTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "xmltv2db_last_import_timestamp_seconds",
		Help: "Unix time of the last finished import pass",
	})
)

func IncProgramme(outcome string) { programmesTotal.WithLabelValues(outcome).Inc() }

// IncStatement counts an applied statement pair; updated selects the update label.
func IncStatement(updated bool) {
	if updated {
		statementsTotal.WithLabelValues("update").Inc()
		return
	}
	statementsTotal.WithLabelValues("insert").Inc()
}

func IncStoreError() { storeErrorsTotal.Inc() }

func IncEpisodeLookup(found bool) {
	if found {
		episodeLookupsTotal.WithLabelValues("found").Inc()
		return
	}
	episodeLookupsTotal.WithLabelValues("not_found").Inc()
}

// RecordImport records a finished pass. result is success, failure or stopped.
func RecordImport(result string, durationSeconds float64, finishedUnix int64) {
	importRunsTotal.WithLabelValues(result).Inc()
	importDurationSeconds.Observe(durationSeconds)
	lastImportTimestamp.Set(float64(finishedUnix))
}
