package latency

import (
	"errors"
	"testing"
)

func TestNormalizeDurations(t *testing.T) {
	tests := []struct {
		name      string
		durations []float64
		scale     int
		want      []int
	}{
		{
			name:      "already normalized",
			durations: []float64{0, 1, 2, 6},
			scale:     2,
			want:      []int{0, 2, 4, 12},
		},
		{
			name:      "dt magnitudes",
			durations: []float64{0, 10, 100, 152},
			scale:     2,
			want:      []int{0, 2, 20, 30},
		},
		{
			name:      "durations close to the fastest",
			durations: []float64{0, 3, 4, 5},
			scale:     2,
			want:      []int{0, 2, 3, 3},
		},
		{
			name: "seconds",
			durations: []float64{
				0,
				3.5555555555555554e-08,
				2.2755555555555555e-07,
				4.977777777777778e-07,
			},
			scale: 2,
			want:  []int{0, 2, 13, 28},
		},
		{
			name:      "scale one",
			durations: []float64{3, 6},
			scale:     1,
			want:      []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDurations(tt.durations, tt.scale)
			if err != nil {
				t.Fatalf("NormalizeDurations() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizeDurations() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("NormalizeDurations()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeDurationsNoTiming(t *testing.T) {
	for _, durations := range [][]float64{nil, {}, {0}, {0, 0, 0}} {
		if _, err := NormalizeDurations(durations, 2); !errors.Is(err, ErrNoDurations) {
			t.Errorf("NormalizeDurations(%v) error = %v, want ErrNoDurations", durations, err)
		}
	}
}

func TestNormalizeDurationsRejects(t *testing.T) {
	if _, err := NormalizeDurations([]float64{1, -2}, 2); err == nil {
		t.Error("negative duration should be rejected")
	}
	if _, err := NormalizeDurations([]float64{1, 2}, 0); err == nil {
		t.Error("zero scale should be rejected")
	}
}

func TestNormalizeDurationsMonotonic(t *testing.T) {
	durations := []float64{0, 1, 1.5, 2, 3.7, 10, 10, 400}
	got, err := NormalizeDurations(durations, 2)
	if err != nil {
		t.Fatalf("NormalizeDurations() error = %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("cycles not monotonic: %v from %v", got, durations)
		}
	}
	if got[0] != 0 {
		t.Errorf("zero duration mapped to %d, want 0", got[0])
	}
}

func TestCycleLimit(t *testing.T) {
	gcf := make([]float64, 100)
	for x := range gcf {
		gcf[x] = float64(3 * x * x)
	}
	ramp := make([]float64, 100)
	for x := range ramp {
		ramp[x] = float64(x)
	}

	tests := []struct {
		name      string
		durations []float64
		cap       int
		want      int
	}{
		{
			// The common factor divides out: max 3*99*99 over gap 3.
			name:      "gcf scaling",
			durations: gcf,
			cap:       10000,
			want:      9801,
		},
		{
			name:      "already reduced",
			durations: []float64{1, 2, 6},
			cap:       10000,
			want:      6,
		},
		{
			name:      "gcf two six",
			durations: []float64{2, 6},
			cap:       10000,
			want:      3,
		},
		{
			name:      "all zero",
			durations: []float64{0},
			cap:       10000,
			want:      0,
		},
		{
			name:      "capped when gaps too fine",
			durations: ramp,
			cap:       50,
			want:      50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CycleLimit(tt.durations, tt.cap)
			if err != nil {
				t.Fatalf("CycleLimit() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CycleLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCycleLimitEmpty(t *testing.T) {
	if _, err := CycleLimit(nil, 10000); !errors.Is(err, ErrNoDurations) {
		t.Errorf("CycleLimit(nil) error = %v, want ErrNoDurations", err)
	}
}

func TestInterpolateDurations(t *testing.T) {
	tests := []struct {
		name      string
		durations []float64
		cap       int
		want      []int
	}{
		{
			name:      "identity when already reduced",
			durations: []float64{1, 2, 6},
			cap:       10000,
			want:      []int{1, 2, 6},
		},
		{
			name:      "reduced by common factor",
			durations: []float64{2, 6},
			cap:       10000,
			want:      []int{1, 3},
		},
		{
			name:      "all zero",
			durations: []float64{0, 0},
			cap:       10000,
			want:      []int{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InterpolateDurations(tt.durations, tt.cap)
			if err != nil {
				t.Fatalf("InterpolateDurations() error = %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("InterpolateDurations()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestInterpolateDurationsCapped(t *testing.T) {
	ramp := make([]float64, 100)
	for x := range ramp {
		ramp[x] = float64(x)
	}

	got, err := InterpolateDurations(ramp, 50)
	if err != nil {
		t.Fatalf("InterpolateDurations() error = %v", err)
	}
	if got[0] != 0 {
		t.Errorf("got[0] = %d, want 0", got[0])
	}
	if got[99] != 50 {
		t.Errorf("got[99] = %d, want the cap 50", got[99])
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("interpolated cycles not monotonic: %v", got)
		}
	}
}
