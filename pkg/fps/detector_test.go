package fps

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hansbonini/psxstr/pkg/common"
)

// feed observes every sector in (first, last] with frame numbers switching
// at the given boundary sectors.
func feed(t *testing.T, d *Detector, first, last int, boundaries []int) []bool {
	t.Helper()
	var results []bool
	frame := 0
	next := 0
	for sector := first + 1; sector <= last; sector++ {
		if next < len(boundaries) && sector == boundaries[next] {
			frame++
			next++
		}
		ok, err := d.Observe(sector, frame)
		if err != nil {
			t.Fatalf("Observe(%d, %d) failed: %v", sector, frame, err)
		}
		results = append(results, ok)
	}
	return results
}

func TestDetector_ConstantCadence(t *testing.T) {
	d, err := NewDetector(0, 0)
	if err != nil {
		t.Fatalf("NewDetector() failed: %v", err)
	}
	feed(t, d, 0, 39, []int{10, 20, 30})

	if got := d.PossibleSectorsPerFrame(); !reflect.DeepEqual(got, []int{10}) {
		t.Errorf("PossibleSectorsPerFrame() = %v, want [10]", got)
	}
	if got := d.AllPossibleSectorsPerFrame(); !reflect.DeepEqual(got, []int{2, 5, 10}) {
		t.Errorf("AllPossibleSectorsPerFrame() = %v, want [2 5 10]", got)
	}
	if d.Exhausted() {
		t.Error("Exhausted() = true, want false")
	}
}

func TestDetector_NoWholeNumberFits(t *testing.T) {
	d, _ := NewDetector(0, 0)
	// gaps of 10, 7 and 13 sectors
	results := feed(t, d, 0, 35, []int{10, 17, 30})

	if results[len(results)-1] {
		t.Error("Observe() should report no possibilities left")
	}
	if !d.Exhausted() {
		t.Error("Exhausted() = false, want true")
	}
	if got := d.PossibleSectorsPerFrame(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("PossibleSectorsPerFrame() = %v, want [1]", got)
	}

	// stays exhausted
	ok, err := d.Observe(40, 4)
	if err != nil || ok {
		t.Errorf("Observe() after exhaustion = %v, %v; want false, nil", ok, err)
	}
}

func TestDetector_Unseeded(t *testing.T) {
	d, _ := NewDetector(100, 3)
	if d.PossibleSectorsPerFrame() != nil {
		t.Error("PossibleSectorsPerFrame() should be nil before the 2nd frame")
	}
	ok, err := d.Observe(101, 3)
	if err != nil || !ok {
		t.Errorf("Observe() on the same frame = %v, %v; want true, nil", ok, err)
	}
	if d.Seeded() {
		t.Error("Seeded() = true before a frame change")
	}

	ok, err = d.Observe(105, 4)
	if err != nil || !ok {
		t.Errorf("Observe() on the 2nd frame = %v, %v; want true, nil", ok, err)
	}
	if !d.Seeded() {
		t.Error("Seeded() = false after a frame change")
	}
	// 2nd frame could start anywhere in 102..105, but no gap was measured yet
	if got := d.PossibleSectorsPerFrame(); got != nil {
		t.Errorf("PossibleSectorsPerFrame() = %v, want nil before any gap", got)
	}
}

func TestDetector_JitteredStart(t *testing.T) {
	// video sectors every other sector, frames every 8 sectors
	d, _ := NewDetector(0, 0)
	observations := [][2]int{
		{2, 0}, {4, 0}, {6, 0},
		{8, 1}, {10, 1}, {12, 1}, {14, 1},
		{16, 2}, {18, 2}, {20, 2}, {22, 2},
		{24, 3}, {26, 3}, {28, 3}, {30, 3},
		{32, 4},
	}
	for _, o := range observations {
		if _, err := d.Observe(o[0], o[1]); err != nil {
			t.Fatalf("Observe(%d, %d) failed: %v", o[0], o[1], err)
		}
	}

	got := d.PossibleSectorsPerFrame()
	found := false
	for _, n := range got {
		if n == 8 {
			found = true
		}
		if n != 8 && 8%n == 0 {
			t.Errorf("PossibleSectorsPerFrame() = %v keeps factor %d of 8", got, n)
		}
	}
	if !found {
		t.Errorf("PossibleSectorsPerFrame() = %v, want it to contain 8", got)
	}
}

func TestDetector_InvalidArguments(t *testing.T) {
	if _, err := NewDetector(-1, 0); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("NewDetector(-1, 0) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewDetector(0, -1); !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("NewDetector(0, -1) error = %v, want ErrInvalidArgument", err)
	}

	d, _ := NewDetector(10, 5)
	tests := []struct {
		name   string
		sector int
		frame  int
	}{
		{"same sector", 10, 5},
		{"earlier sector", 9, 5},
		{"earlier frame", 11, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Observe(tt.sector, tt.frame); !errors.Is(err, common.ErrInvalidArgument) {
				t.Errorf("Observe(%d, %d) error = %v, want ErrInvalidArgument", tt.sector, tt.frame, err)
			}
		})
	}

	// rejected observations leave the state alone
	if _, err := d.Observe(11, 5); err != nil {
		t.Errorf("Observe(11, 5) failed: %v", err)
	}
}

func TestRemoveFactors(t *testing.T) {
	tests := []struct {
		in   []int
		want []int
	}{
		{[]int{2, 5, 10}, []int{10}},
		{[]int{2, 3, 4}, []int{3, 4}},
		{[]int{2, 4, 8}, []int{8}},
		{[]int{7}, []int{7}},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := removeFactors(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("removeFactors(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
