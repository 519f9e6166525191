package ledger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const testLedger = `[
    {
        "name": "app1",
        "uid": "uid1",
        "version": "1.0.0"
    },
    {
        "name": "app2",
        "uid": "uid2",
        "version": "2.1.0",
        "updated_time": "2026-01-01T00:00:00Z"
    },
    {
        "name": "app3",
        "uid": "uid3",
        "version": "0.5.0"
    }
]`

func writeLedger(t *testing.T, content string) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apps.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing apps file: %v", err)
	}
	return New(path)
}

func TestEntries(t *testing.T) {
	l := writeLedger(t, testLedger)

	entries, err := l.Entries()
	if err != nil {
		t.Fatalf("Entries returned error: %v", err)
	}

	want := []Entry{
		{Name: "app1", UID: "uid1", Version: "1.0.0"},
		{Name: "app2", UID: "uid2", Version: "2.1.0", UpdatedTime: "2026-01-01T00:00:00Z"},
		{Name: "app3", UID: "uid3", Version: "0.5.0"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Entries = %v, want %v", entries, want)
	}
}

func TestEntriesMissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := l.Entries(); err == nil {
		t.Error("expected error for missing apps file")
	}
}

func TestEntriesCorruptedFile(t *testing.T) {
	l := writeLedger(t, "{not json]")

	_, err := l.Entries()
	if !errors.Is(err, ErrCorrupted) {
		t.Errorf("expected ErrCorrupted, got %v", err)
	}
}

func TestUpdateRewritesOnlyMatchingEntry(t *testing.T) {
	l := writeLedger(t, testLedger)

	if err := l.Update("uid2", "2.2.0", "2026-08-24T10:00:00Z"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	entries, err := l.Entries()
	if err != nil {
		t.Fatalf("Entries returned error: %v", err)
	}

	want := []Entry{
		{Name: "app1", UID: "uid1", Version: "1.0.0"},
		{Name: "app2", UID: "uid2", Version: "2.2.0", UpdatedTime: "2026-08-24T10:00:00Z"},
		{Name: "app3", UID: "uid3", Version: "0.5.0"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("after Update: %v, want %v", entries, want)
	}
}

func TestUpdateFirstMatchWins(t *testing.T) {
	l := writeLedger(t, `[
    {"name": "dup", "uid": "uid1", "version": "1.0.0"},
    {"name": "dup", "uid": "uid1", "version": "9.9.9"}
]`)

	if err := l.Update("uid1", "2.0.0", "2026-08-24T10:00:00Z"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	entries, _ := l.Entries()
	if entries[0].Version != "2.0.0" {
		t.Errorf("first entry version = %q, want 2.0.0", entries[0].Version)
	}
	if entries[1].Version != "9.9.9" {
		t.Errorf("second entry version = %q, should be untouched", entries[1].Version)
	}
}

func TestUpdateUnknownUIDDoesNotWrite(t *testing.T) {
	l := writeLedger(t, testLedger)
	before, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}

	err = l.Update("uid99", "1.0.0", "2026-08-24T10:00:00Z")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}

	after, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("apps file was rewritten despite unknown uid")
	}
}

func TestUpdateWritesFourSpaceIndent(t *testing.T) {
	l := writeLedger(t, testLedger)

	if err := l.Update("uid1", "1.1.0", "2026-08-24T10:00:00Z"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n    {") {
		t.Errorf("apps file should be indented with 4 spaces:\n%s", data)
	}
	// No stray temp file left behind
	if _, err := os.Stat(l.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after rename")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	l := writeLedger(t, testLedger)

	if err := l.Update("uid3", "0.6.0", "2026-08-24T10:00:00Z"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("rewritten file is not valid JSON: %v", err)
	}
	if entries[2].Version != "0.6.0" || entries[2].UpdatedTime != "2026-08-24T10:00:00Z" {
		t.Errorf("round trip lost the update: %+v", entries[2])
	}
}

func TestLabel(t *testing.T) {
	e := Entry{Name: "app1", UID: "uid1", Version: "1.0.0"}
	if got := e.Label(); got != "app1_uid1_1.0.0" {
		t.Errorf("Label = %q, want app1_uid1_1.0.0", got)
	}
}
