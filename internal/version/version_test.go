package version

import (
	"strings"
	"testing"
)

func TestColoredPlainMatchesVersion(t *testing.T) {
	if got := Colored(false); got != Version {
		t.Fatalf("Colored(false) = %q, want %q", got, Version)
	}
}

func TestColoredKeepsSuffix(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc1"
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc1") {
		t.Fatalf("Colored(true) = %q", got)
	}

	Version = "nightly"
	if got := Colored(true); got != "nightly" {
		t.Fatalf("non-semver version must stay as is, got %q", got)
	}
}
