// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package importer

import (
	"errors"
	"fmt"
)

// ErrNoRoot is returned when the document holds no root element.
var ErrNoRoot = errors.New("importer: no root element in document")

// StoreError reports a statement the store rejected. The pass stops at the
// failing programme; statements applied before it stay in place.
type StoreError struct {
	ChannelID string
	EventID   uint16
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("importer: store channel %s event %d: %v", e.ChannelID, e.EventID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
