// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRunID     = "run_id"
	FieldSource    = "source"
	FieldChannelID = "channel_id"
	FieldEventID   = "event_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldCause     = "cause"
	FieldElement   = "element"

	// Programme fields
	FieldTitle     = "title"
	FieldShortText = "short_text"
	FieldStart     = "start"

	// Path fields
	FieldPath     = "path"
	FieldDatabase = "database"
)
