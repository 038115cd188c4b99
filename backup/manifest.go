package backup

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// ManifestFile is the manifest name inside every backup directory.
const ManifestFile = "backup_manifest.json"

// RoutesArtifact is the artifact name of the shared route registration file.
// Its backup path is recorded at the top of the manifest.
const RoutesArtifact = "routes"

// Entry records the state of one artifact path before a run.
type Entry struct {
	OriginalPath string `json:"original_path"`
	// BackupPath is nil when nothing was copied.
	BackupPath *string `json:"backup_path"`
	BackedUp   bool    `json:"backed_up"`
	// Existed is false for paths the run generated from nothing; rollback
	// deletes them.
	Existed bool    `json:"existed"`
	Error   *string `json:"error"`
}

// Manifest is the record of one backup. It is written once, when the
// snapshot completes, and never modified afterwards.
type Manifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	// Entities maps entity name to artifact name to entry.
	Entities map[string]map[string]*Entry `json:"entities"`
	// SharedArtifactBackup is the backup of the route registration file.
	SharedArtifactBackup *string `json:"shared_artifact_backup"`
	// Shared maps shared artifact name to entry.
	Shared map[string]*Entry `json:"shared,omitempty"`
}

func newManifest(id string, ts time.Time) *Manifest {
	return &Manifest{
		ID:        id,
		Timestamp: ts,
		Entities:  make(map[string]map[string]*Entry),
		Shared:    make(map[string]*Entry),
	}
}

func (m *Manifest) add(t Target, e *Entry) {
	if t.Entity == "" {
		m.Shared[t.Artifact] = e
		if t.Artifact == RoutesArtifact && e.BackedUp {
			m.SharedArtifactBackup = e.BackupPath
		}
		return
	}
	if m.Entities[t.Entity] == nil {
		m.Entities[t.Entity] = make(map[string]*Entry)
	}
	m.Entities[t.Entity][t.Artifact] = e
}

// Walk calls fn for every entry: entities and their artifacts sorted by
// name, then shared artifacts.
func (m *Manifest) Walk(fn func(Target, *Entry)) {
	for _, entity := range slices.Sorted(maps.Keys(m.Entities)) {
		artifacts := m.Entities[entity]
		for _, artifact := range slices.Sorted(maps.Keys(artifacts)) {
			e := artifacts[artifact]
			fn(Target{Entity: entity, Artifact: artifact, Path: e.OriginalPath}, e)
		}
	}
	for _, artifact := range slices.Sorted(maps.Keys(m.Shared)) {
		e := m.Shared[artifact]
		fn(Target{Artifact: artifact, Path: e.OriginalPath}, e)
	}
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	n := len(m.Shared)
	for _, a := range m.Entities {
		n += len(a)
	}
	return n
}

func decodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("backup: decode manifest: %w", err)
	}
	if m.Entities == nil {
		m.Entities = make(map[string]map[string]*Entry)
	}
	if m.Shared == nil {
		m.Shared = make(map[string]*Entry)
	}
	return &m, nil
}
