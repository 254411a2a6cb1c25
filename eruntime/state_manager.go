package eruntime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pierrec/lz4"

	"oilmap/typedef"
)

// Snapshot is the lz4-compressed autosave payload written on shutdown
// and restored on the next launch. It carries everything needed to
// reopen the session exactly where it was, including the backend map id
// so a later save goes to the right record.
type Snapshot struct {
	Type        string               `json:"type"`
	Version     string               `json:"version"`
	Timestamp   time.Time            `json:"timestamp"`
	MapID       int                  `json:"map_id"`
	Points      []typedef.Point      `json:"points"`
	Connections []typedef.Connection `json:"connections"`
	Settings    typedef.MapSettings  `json:"settings"`
}

const snapshotVersion = "1.0"

// NewSnapshot stamps a snapshot with its type and version.
func NewSnapshot(mapID int, points []typedef.Point, connections []typedef.Connection, settings typedef.MapSettings) *Snapshot {
	return &Snapshot{
		Type:        "state_save",
		Version:     snapshotVersion,
		Timestamp:   time.Now(),
		MapID:       mapID,
		Points:      points,
		Connections: connections,
		Settings:    settings,
	}
}

// SaveSnapshot writes the snapshot to path as lz4-compressed JSON.
func SaveSnapshot(path string, s *Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	if _, err := writer.Write(raw); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize snapshot: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Printf("[STATE] Saved snapshot to %s (%d bytes compressed)\n", path, buf.Len())
	return nil
}

// LoadSnapshot reads and decompresses a snapshot written by
// SaveSnapshot. Unknown versions are rejected rather than guessed at.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reader := lz4.NewReader(bytes.NewReader(data))
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %q", s.Version)
	}
	return &s, nil
}
