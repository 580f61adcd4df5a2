package planner

import (
	"errors"
	"math"
	"testing"
)

func TestPlanShort(t *testing.T) {
	opts := DefaultOptions()
	for _, d := range []float64{0.5, 1, 59.9, 300, 599.99, 600} {
		for _, w := range []int{1, 4, 8, 32} {
			segs, err := opts.Plan(d, w)
			if err != nil {
				t.Fatalf("Plan(%v, %d) error = %v", d, w, err)
			}
			if len(segs) != 1 {
				t.Fatalf("Plan(%v, %d) returned %d segments, want 1", d, w, len(segs))
			}
			s := segs[0]
			if s.LogicalStart != 0 || s.LogicalEnd != d || s.ExtractStart != 0 || s.ExtractEnd != d {
				t.Errorf("Plan(%v, %d) = %+v", d, w, s)
			}
		}
	}
}

func TestPlan1800With4Workers(t *testing.T) {
	segs, err := DefaultOptions().Plan(1800, 4)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	want := [][2]float64{{0, 450}, {450, 900}, {900, 1350}, {1350, 1800}}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d", len(segs), len(want))
	}
	for i, w := range want {
		if segs[i].Index != i || segs[i].LogicalStart != w[0] || segs[i].LogicalEnd != w[1] {
			t.Errorf("segment %d = %+v, want [%v,%v)", i, segs[i], w[0], w[1])
		}
	}
	if segs[0].ExtractStart != 0 {
		t.Errorf("first extract start = %v, want 0", segs[0].ExtractStart)
	}
	if segs[1].ExtractStart != 420 || segs[1].ExtractEnd != 900 {
		t.Errorf("second extract window = [%v,%v), want [420,900)", segs[1].ExtractStart, segs[1].ExtractEnd)
	}
}

func TestSegmentDuration(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name     string
		duration float64
		workers  int
		want     float64
	}{
		{"short returns itself", 420, 8, 420},
		{"ideal band untouched", 1800, 4, 450},
		{"below min clamps to min", 700, 8, 120},
		{"fringe below ideal snaps up", 1800, 8, 300},
		{"many workers cap at ideal count", 7200, 1, 600},
		{"rounded to 30s", 2000, 5, 390},
		{"zero workers treated as one", 1200, 0, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := opts.SegmentDuration(tt.duration, tt.workers); got != tt.want {
				t.Errorf("SegmentDuration(%v, %d) = %v, want %v", tt.duration, tt.workers, got, tt.want)
			}
		})
	}
}

func TestPlanCoverage(t *testing.T) {
	opts := DefaultOptions()
	durations := []float64{600.5, 601, 700, 899.7, 1800, 2000, 3599.25, 3600, 5432.1, 10800, 36000}
	workers := []int{1, 2, 3, 4, 8, 16, 64}

	for _, d := range durations {
		for _, w := range workers {
			segs, err := opts.Plan(d, w)
			if err != nil {
				t.Fatalf("Plan(%v, %d) error = %v", d, w, err)
			}
			if segs[0].LogicalStart != 0 {
				t.Errorf("Plan(%v, %d) starts at %v", d, w, segs[0].LogicalStart)
			}
			if last := segs[len(segs)-1]; last.LogicalEnd != d {
				t.Errorf("Plan(%v, %d) ends at %v", d, w, last.LogicalEnd)
			}
			for i, s := range segs {
				if s.Index != i {
					t.Errorf("Plan(%v, %d) segment %d has index %d", d, w, i, s.Index)
				}
				if s.LogicalEnd <= s.LogicalStart {
					t.Errorf("Plan(%v, %d) segment %d is empty: %+v", d, w, i, s)
				}
				if i > 0 && s.LogicalStart != segs[i-1].LogicalEnd {
					t.Errorf("Plan(%v, %d) gap or overlap before segment %d", d, w, i)
				}
				if i < len(segs)-1 && (s.Duration() < opts.Min || s.Duration() > opts.Max) {
					t.Errorf("Plan(%v, %d) segment %d duration %v out of bounds", d, w, i, s.Duration())
				}
				wantExtract := math.Max(0, s.LogicalStart-opts.Overlap)
				if s.ExtractStart != wantExtract || s.ExtractEnd != s.LogicalEnd {
					t.Errorf("Plan(%v, %d) segment %d extract window [%v,%v)", d, w, i, s.ExtractStart, s.ExtractEnd)
				}
			}
		}
	}
}

func TestPlanInvalidDuration(t *testing.T) {
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := DefaultOptions().Plan(d, 4); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("Plan(%v) error = %v, want ErrInvalidDuration", d, err)
		}
	}
}
