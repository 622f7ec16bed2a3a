package buildinfo

import (
	"strings"
	"testing"
)

func TestStamped(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	if got := Resolve(); got != "v1.2.3" {
		t.Errorf("Resolve() = %q", got)
	}
	if got := UserAgent(); got != "poddiff/v1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
	if !strings.HasPrefix(Template(), "{{.Name}} v1.2.3 (") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.Contains(String(), "version: v1.2.3") {
		t.Errorf("String() = %q", String())
	}
}
