package output

import (
	"strings"
	"testing"
)

func TestFormatAppUsesPackageColor(t *testing.T) {
	ForceColor()
	defer NoColor()

	formatted := FormatApp("app_123_1.0.0")
	if !strings.Contains(formatted, "app_123_1.0.0") {
		t.Errorf("FormatApp lost the label: %q", formatted)
	}
	if !strings.Contains(formatted, "\x1b[") {
		t.Errorf("FormatApp should contain ANSI codes when color is forced: %q", formatted)
	}
}

func TestSprintfWithoutColor(t *testing.T) {
	NoColor()

	got := Sprintf(Success, "downloaded %d apps", 3)
	if got != "downloaded 3 apps" {
		t.Errorf("Sprintf = %q, want %q", got, "downloaded 3 apps")
	}
}
