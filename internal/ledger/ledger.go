// Package ledger manages the JSON file tracking installed apps and their
// recorded versions.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Error variables for ledger errors
var (
	// ErrCorrupted is returned when the ledger file cannot be parsed
	ErrCorrupted = errors.New("apps file is corrupted")
	// ErrEntryNotFound is returned when no entry matches the requested uid
	ErrEntryNotFound = errors.New("app not found in apps file")
)

// Entry is one tracked app: its display name, Splunkbase uid, the version
// recorded as installed, and when that version was last downloaded.
type Entry struct {
	Name        string `json:"name"`
	UID         string `json:"uid"`
	Version     string `json:"version"`
	UpdatedTime string `json:"updated_time,omitempty"`
}

// Label returns the display label for an entry: name_uid_version.
func (e Entry) Label() string {
	return fmt.Sprintf("%s_%s_%s", e.Name, e.UID, e.Version)
}

// Ledger is the file-backed sequence of tracked apps. Every operation reads
// the whole file and every mutation rewrites it; entries keep their file
// order. The uid is the natural key and the first match wins.
type Ledger struct {
	path string
}

// New creates a ledger backed by the given file path. The file is not
// touched until an operation needs it.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// Entries reads and parses the full ledger file.
func (l *Ledger) Entries() ([]Entry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read apps file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	return entries, nil
}

// Update sets the version and updated time of the first entry matching uid
// and rewrites the file. Returns ErrEntryNotFound without writing when no
// entry matches.
func (l *Ledger) Update(uid, version, updatedTime string) error {
	entries, err := l.Entries()
	if err != nil {
		return err
	}

	updated := false
	for i := range entries {
		if entries[i].UID == uid {
			entries[i].Version = version
			entries[i].UpdatedTime = updatedTime
			updated = true
			break
		}
	}

	if !updated {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, uid)
	}

	return l.save(entries)
}

// save rewrites the whole ledger file with stable 4-space indentation.
func (l *Ledger) save(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal apps file: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := l.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write apps file: %w", err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename apps file: %w", err)
	}

	return nil
}
