package fragment

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/san-kum/arbor/internal/attr"
)

func TestEncode_Example(t *testing.T) {
	got := Encode([]attr.Values{
		{65, 35, 0.625, 6, 0},
		{70, 40, 0.6, 6, 1},
	})
	want := "65_35_0.625_6_0,70_40_0.6_6_1"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestDecode_Example(t *testing.T) {
	slots, extra, err := Decode("65_35_0.625_6_0,70_40_0.6_6_1", 2)
	if err != nil || extra != 0 {
		t.Fatalf("Decode: extra=%d err=%v", extra, err)
	}
	if !slots[0].OK || slots[0].Values != (attr.Values{65, 35, 0.625, 6, 0}) {
		t.Errorf("slot 0 = %+v", slots[0])
	}
	if !slots[1].OK || slots[1].Values != (attr.Values{70, 40, 0.6, 6, 1}) {
		t.Errorf("slot 1 = %+v", slots[1])
	}
}

func TestRoundTrip_MutatedScene(t *testing.T) {
	m := attr.NewMutator(attr.DefaultTable(), rand.New(rand.NewSource(9)))
	trees := make([]attr.Values, 9)
	for i := range trees {
		v := m.Initialize(nil)
		for j := 0; j < 50; j++ {
			v, _ = m.MutateOne(v)
		}
		trees[i] = v
	}

	decoded, err := DecodeAll(Encode(trees))
	if err != nil {
		t.Fatal(err)
	}
	for i := range trees {
		if decoded[i] != trees[i] {
			t.Errorf("tree %d: %v != %v", i, decoded[i], trees[i])
		}
	}
}

func TestDecode_BadSegments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"arity", "65_35_0.625_6,70_40_0.6_6_1", ErrArity},
		{"not numeric", "65_abc_0.625_6_0,70_40_0.6_6_1", ErrNotNumeric},
		{"negative branchings", "65_35_0.625_6_-1,70_40_0.6_6_1", attr.ErrNegativeBranchings},
		{"fractional branchings", "65_35_0.625_6_1.5,70_40_0.6_6_1", attr.ErrNegativeBranchings},
		{"nan", "NaN_35_0.625_6_0,70_40_0.6_6_1", attr.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, _, err := Decode(tt.in, 2)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var se *SegmentError
			if !errors.As(err, &se) || se.Index != 0 {
				t.Errorf("expected SegmentError for tree 0, got %v", err)
			}
			if slots[0].OK {
				t.Error("bad segment reported OK")
			}
			if !slots[1].OK {
				t.Error("good segment lost")
			}
		})
	}
}

func TestDecode_Lengths(t *testing.T) {
	slots, extra, err := Decode("65_35_0.625_6_0", 3)
	if err != nil {
		t.Fatal(err)
	}
	if extra != 0 || !slots[0].OK || slots[1].OK || slots[2].OK {
		t.Errorf("short state: extra=%d slots=%+v", extra, slots)
	}

	slots, extra, err = Decode("65_35_0.625_6_0,70_40_0.6_6_1,71_41_0.6_6_2", 2)
	if err != nil {
		t.Fatal(err)
	}
	if extra != 1 || len(slots) != 2 {
		t.Errorf("long state: extra=%d len=%d", extra, len(slots))
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, s := range []string{"", "#", "  "} {
		if _, _, err := Decode(s, 2); !errors.Is(err, ErrEmpty) {
			t.Errorf("Decode(%q) = %v, want ErrEmpty", s, err)
		}
	}
}

func TestDecode_LeadingHash(t *testing.T) {
	slots, _, err := Decode("#65_35_0.625_6_0", 1)
	if err != nil || !slots[0].OK {
		t.Fatalf("Decode with '#': %+v %v", slots, err)
	}
}
