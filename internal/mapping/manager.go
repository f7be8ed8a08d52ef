// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package mapping keeps the association between XMLTV channel ids and the
// receiver channels they feed, together with per-channel processing flags.
package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	xglog "github.com/ManuGH/xmltv2db/internal/log"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Mapping describes how one XMLTV channel is imported.
type Mapping struct {
	ChannelID string   `yaml:"channel"`
	Days      int      `yaml:"days,omitempty"` // days in advance, 0 = unlimited
	Flags     Flags    `yaml:"options,omitempty"`
	Targets   []string `yaml:"targets,omitempty"`
}

// Append reports whether the mapping layers data onto existing EPG.
func (m Mapping) Append() bool { return m.Flags.Has(OptAppend) }

type fileFormat struct {
	Mappings []Mapping `yaml:"mappings"`
}

// Manager handles persistence of channel mappings.
type Manager struct {
	mu       sync.RWMutex
	filePath string
	maps     map[string]Mapping
}

// NewManager creates a manager backed by the YAML file at path.
func NewManager(path string) *Manager {
	return &Manager{
		filePath: path,
		maps:     make(map[string]Mapping),
	}
}

// Load reads the mapping file. A missing file leaves the manager empty.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var ff fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ff); err != nil {
		return fmt.Errorf("parse %s: %w", m.filePath, err)
	}

	maps := make(map[string]Mapping, len(ff.Mappings))
	for _, mp := range ff.Mappings {
		if mp.ChannelID == "" {
			return fmt.Errorf("parse %s: mapping without channel", m.filePath)
		}
		maps[mp.ChannelID] = mp
	}
	m.maps = maps

	xglog.WithComponent("mapping").Info().
		Int("count", len(maps)).
		Str(xglog.FieldPath, m.filePath).
		Msg("loaded channel mappings")
	return nil
}

// Save writes the mappings atomically.
func (m *Manager) Save() error {
	data, err := yaml.Marshal(fileFormat{Mappings: m.List()})
	if err != nil {
		return err
	}
	return renameio.WriteFile(m.filePath, data, 0o644)
}

// Lookup returns the mapping for an XMLTV channel id.
func (m *Manager) Lookup(channelID string) (Mapping, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mp, ok := m.maps[channelID]
	return mp, ok
}

// Set adds or replaces a mapping.
func (m *Manager) Set(mp Mapping) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps[mp.ChannelID] = mp
}

// Remove deletes the mapping for channelID.
func (m *Manager) Remove(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.maps, channelID)
}

// List returns all mappings ordered by channel id.
func (m *Manager) List() []Mapping {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Mapping, 0, len(m.maps))
	for _, mp := range m.maps {
		out = append(out, mp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out
}

// ChannelIDs returns the mapped XMLTV channel ids, sorted.
func (m *Manager) ChannelIDs() []string {
	list := m.List()
	ids := make([]string, len(list))
	for i, mp := range list {
		ids[i] = mp.ChannelID
	}
	return ids
}
