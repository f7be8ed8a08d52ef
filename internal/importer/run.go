// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package importer

import (
	"context"
	"time"

	xglog "github.com/ManuGH/xmltv2db/internal/log"
	"github.com/ManuGH/xmltv2db/internal/metrics"
)

// ImportFile opens the document at path and processes it.
func (p *Processor) ImportFile(ctx context.Context, path string) (Result, error) {
	started := time.Now()
	logger := xglog.WithComponentFromContext(ctx, "importer")

	doc, err := OpenDocument(path)
	if err != nil {
		metrics.RecordImport("failure", time.Since(started).Seconds(), time.Now().Unix())
		return Result{}, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn().Err(cerr).Str(xglog.FieldPath, path).Msg("close document")
		}
	}()

	res, err := p.Process(ctx, doc)
	result := "success"
	switch {
	case err != nil:
		result = "failure"
	case res.Stopped:
		result = "stopped"
	}
	metrics.RecordImport(result, time.Since(started).Seconds(), time.Now().Unix())

	logger.Info().
		Str(xglog.FieldPath, path).
		Str("result", result).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Int("stale", res.Stale).
		Int("unmapped", res.Unmapped).
		Dur("duration", time.Since(started)).
		Msg("import finished")
	return res, err
}
