package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/arbor/internal/attr"
)

func TestStdDev(t *testing.T) {
	trees := []attr.Values{
		{60, 0, 0, 0, 0},
		{70, 0, 0, 0, 0},
	}
	if got := StdDev(trees, attr.Length); math.Abs(got-5) > 1e-9 {
		t.Errorf("StdDev = %v, want 5", got)
	}
	if StdDev(nil, attr.Length) != 0 {
		t.Error("empty scene should have zero spread")
	}
}

func TestSpread(t *testing.T) {
	s := NewSpread(attr.Length)
	s.Observe([]attr.Values{{60}, {70}}, 0)
	s.Observe([]attr.Values{{65}, {65}}, 0)
	if got := s.Value(); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Value = %v, want 2.5", got)
	}
	s.Reset()
	if s.Value() != 0 {
		t.Error("Reset did not clear")
	}
}

func TestSegments(t *testing.T) {
	trees := []attr.Values{
		{65, 35, 0.6, 6, 0},
		{65, 35, 0.6, 6, 2},
	}
	if got := Count(trees); got != 1+7 {
		t.Errorf("Count = %d, want 8", got)
	}
	s := NewSegments()
	s.Observe(trees, 0)
	if s.Value() != 8 {
		t.Errorf("Value = %v", s.Value())
	}
}

func TestDrift(t *testing.T) {
	d := NewDrift(attr.Divergence)
	d.Observe([]attr.Values{{0, 35}}, 0)
	d.Observe([]attr.Values{{0, 50}, {0, 10}}, 0)
	d.Observe([]attr.Values{{0, 99}, {0, 30}}, 1)
	if got := d.Value(); got != 15 {
		t.Errorf("Value = %v, want 15", got)
	}
	d.Observe([]attr.Values{{0, 1}}, 5)
	if got := d.Value(); got != 15 {
		t.Error("out-of-range root should be ignored")
	}
}

func TestDefaultSet(t *testing.T) {
	s := Default()
	if len(s) != 1+2*attr.Count {
		t.Fatalf("Default has %d metrics", len(s))
	}
	s.Observe([]attr.Values{{65, 35, 0.625, 6, 1}}, 0)
	v := s.Values()
	if v["segments"] != 3 {
		t.Errorf("segments = %v", v["segments"])
	}
	if _, ok := v["drift_branchings"]; !ok {
		t.Error("missing drift_branchings")
	}
}

func TestRootSeries(t *testing.T) {
	scenes := [][]attr.Values{
		{{60}, {70}},
		{{61}, {71}},
		{{62}},
	}
	got := RootSeries(scenes, []int{1, 0, 3}, attr.Length)
	if len(got) != 2 || got[0] != 70 || got[1] != 61 {
		t.Errorf("RootSeries = %v", got)
	}
}
