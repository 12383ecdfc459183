package ids

import (
	"regexp"
	"testing"
)

var hex32 = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestNew_Format(t *testing.T) {
	t.Parallel()
	id := New()
	if !hex32.MatchString(id) {
		t.Fatalf("id %q is not 32 lowercase hex chars", id)
	}
}

func TestNew_Unique(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
