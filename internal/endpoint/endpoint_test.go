package endpoint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveDeterministic(t *testing.T) {
	dir := t.TempDir()

	ep1, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	ep2, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ep1 != ep2 {
		t.Errorf("Resolve not deterministic: %v vs %v", ep1, ep2)
	}
}

func TestResolveEquivalentSpellings(t *testing.T) {
	dir := t.TempDir()

	// A messy relative-style spelling of the same directory.
	messy := filepath.Join(dir, "sub", "..")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	ep1, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	ep2, err := Resolve(messy)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ep1 != ep2 {
		t.Errorf("equivalent spellings resolved differently: %v vs %v", ep1, ep2)
	}
}

func TestResolveRelativeMatchesAbsolute(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	abs, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	rel, err := Resolve(".")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if abs != rel {
		t.Errorf("relative spelling resolved differently: %v vs %v", abs, rel)
	}
}

func TestResolveDistinctProjects(t *testing.T) {
	ep1, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ep2, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ep1 == ep2 {
		t.Errorf("distinct projects resolved to the same endpoint: %v", ep1)
	}
}

func TestPortRange(t *testing.T) {
	for i := 0; i < 20; i++ {
		dir := t.TempDir()
		port, err := Port(dir)
		if err != nil {
			t.Fatalf("Port failed: %v", err)
		}
		if port < portRangeBase || port >= portRangeBase+portRangeSize {
			t.Errorf("port %d outside [%d, %d)", port, portRangeBase, portRangeBase+portRangeSize)
		}
	}
}

func TestResolveTCPForm(t *testing.T) {
	dir := t.TempDir()
	ep, err := resolve(dir, true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if ep.Network != TCP {
		t.Errorf("expected tcp network, got %s", ep.Network)
	}
	if !strings.HasPrefix(ep.Address, "127.0.0.1:") {
		t.Errorf("expected loopback address, got %s", ep.Address)
	}
}

func TestResolveUnixForm(t *testing.T) {
	dir := t.TempDir()
	ep, err := resolve(dir, false)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if ep.Network != Unix {
		t.Errorf("expected unix network, got %s", ep.Network)
	}
	if !strings.HasSuffix(ep.Address, ".sock") {
		t.Errorf("expected socket path, got %s", ep.Address)
	}
}
