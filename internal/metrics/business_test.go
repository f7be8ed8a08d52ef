// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromhttpExposure(t *testing.T) {
	IncProgramme(OutcomeStored)

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "xmltv2db_programmes_total"))
}

func TestIncProgramme(t *testing.T) {
	before := testutil.ToFloat64(programmesTotal.WithLabelValues(OutcomeStale))
	IncProgramme(OutcomeStale)
	IncProgramme(OutcomeStale)
	assert.Equal(t, before+2, testutil.ToFloat64(programmesTotal.WithLabelValues(OutcomeStale)))
}

func TestIncStatement(t *testing.T) {
	ins := testutil.ToFloat64(statementsTotal.WithLabelValues("insert"))
	upd := testutil.ToFloat64(statementsTotal.WithLabelValues("update"))

	IncStatement(false)
	IncStatement(true)
	IncStatement(true)

	assert.Equal(t, ins+1, testutil.ToFloat64(statementsTotal.WithLabelValues("insert")))
	assert.Equal(t, upd+2, testutil.ToFloat64(statementsTotal.WithLabelValues("update")))
}

func TestIncEpisodeLookup(t *testing.T) {
	found := testutil.ToFloat64(episodeLookupsTotal.WithLabelValues("found"))
	IncEpisodeLookup(true)
	IncEpisodeLookup(false)
	assert.Equal(t, found+1, testutil.ToFloat64(episodeLookupsTotal.WithLabelValues("found")))
}

func TestRecordImport(t *testing.T) {
	errs := testutil.ToFloat64(storeErrorsTotal)
	IncStoreError()
	assert.Equal(t, errs+1, testutil.ToFloat64(storeErrorsTotal))

	RecordImport("success", 1.5, 1704110400)
	assert.Equal(t, float64(1704110400), testutil.ToFloat64(lastImportTimestamp))
	assert.GreaterOrEqual(t, testutil.ToFloat64(importRunsTotal.WithLabelValues("success")), float64(1))
}
