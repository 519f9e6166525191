package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseINI(t *testing.T) {
	content := `
# credentials
[splunkbase]
username = alice
password = hunter2

[apps]
; paths
file = /etc/splunkasd/apps.json
output=/var/lib/splunkasd
`

	got, err := ParseINI(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseINI returned error: %v", err)
	}

	want := map[string]map[string]string{
		"splunkbase": {"username": "alice", "password": "hunter2"},
		"apps":       {"file": "/etc/splunkasd/apps.json", "output": "/var/lib/splunkasd"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseINI = %v, want %v", got, want)
	}
}

func TestParseINIGlobalKeys(t *testing.T) {
	content := "log.level = warn\n[splunkbase]\nusername = bob\n"

	got, err := ParseINI(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseINI returned error: %v", err)
	}

	if got[""]["log.level"] != "warn" {
		t.Errorf("global key = %q, want warn", got[""]["log.level"])
	}
	if got["splunkbase"]["username"] != "bob" {
		t.Errorf("sectioned key = %q, want bob", got["splunkbase"]["username"])
	}
}

func TestParseINISkipsMalformedLines(t *testing.T) {
	content := "[apps]\nnot a key value pair\nfile = apps.json\n"

	got, err := ParseINI(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ParseINI returned error: %v", err)
	}

	if len(got["apps"]) != 1 || got["apps"]["file"] != "apps.json" {
		t.Errorf("ParseINI = %v, want only the file key", got["apps"])
	}
}

func TestParseINIEmptySection(t *testing.T) {
	got, err := ParseINI(strings.NewReader("[empty]\n"))
	if err != nil {
		t.Fatalf("ParseINI returned error: %v", err)
	}
	if sec, ok := got["empty"]; !ok || len(sec) != 0 {
		t.Errorf("expected empty section present, got %v", got)
	}
}
