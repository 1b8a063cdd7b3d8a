package main

import (
	"strings"
	"testing"
)

func TestSheetAlignsAndPads(t *testing.T) {
	s := newSheet("Poses", numeric("Time"), label("Head"))
	s.add("1")
	s.add("22", "x")

	out := s.String()
	lower := strings.ToLower(out)
	requireContains(t, lower, "poses")
	requireContains(t, out, "│    1 │      │")
	requireContains(t, out, "│   22 │ x    │")
	// headers are upper-cased by the style
	if strings.Index(lower, "poses") > strings.Index(out, "TIME") {
		t.Errorf("title should come before the header:\n%s", out)
	}
}

func TestSheetWithoutColumns(t *testing.T) {
	if out := newSheet("empty").String(); out != "" {
		t.Errorf("String() = %q, want empty", out)
	}
}
