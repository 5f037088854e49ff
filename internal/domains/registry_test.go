package domains

import "testing"

func TestNewRegistryAssignsOrderedIndices(t *testing.T) {
	r, err := NewRegistry([]string{"payments", "ledger", "audit"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	for i, name := range []string{"payments", "ledger", "audit"} {
		idx, ok := r.Index(name)
		if !ok || idx != uint64(i) {
			t.Fatalf("Index(%q) = %d, %v; want %d, true", name, idx, ok, i)
		}
		if got := r.Name(uint64(i)); got != name {
			t.Fatalf("Name(%d) = %q, want %q", i, got, name)
		}
	}
}

func TestNewRegistryRejectsDuplicateNames(t *testing.T) {
	if _, err := NewRegistry([]string{"a", "b", "a"}); err == nil {
		t.Fatal("expected error for duplicate domain name")
	}
}

func TestNewRegistryRejectsEmptyName(t *testing.T) {
	if _, err := NewRegistry([]string{"a", ""}); err == nil {
		t.Fatal("expected error for empty domain name")
	}
}

func TestRegistryNameUnknownIndexReturnsEmpty(t *testing.T) {
	r, err := NewRegistry([]string{"a"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if got := r.Name(99); got != "" {
		t.Fatalf("Name(99) = %q, want empty string", got)
	}
}

func TestRegistryChecksumStableForSameNames(t *testing.T) {
	a, _ := NewRegistry([]string{"x", "y", "z"})
	b, _ := NewRegistry([]string{"x", "y", "z"})
	if a.Checksum() != b.Checksum() {
		t.Fatal("identical name lists should produce identical checksums")
	}

	c, _ := NewRegistry([]string{"x", "z", "y"})
	if a.Checksum() == c.Checksum() {
		t.Fatal("reordered name lists should produce different checksums")
	}
}
