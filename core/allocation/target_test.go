package allocation

import "testing"

func TestComputeProjectSubmissionTarget(t *testing.T) {
	tests := []struct {
		name                      string
		target, allocated, want int
	}{
		{"plain", 5, 2, 6},
		{"upper-clamped at 12", 10, 0, 12},
		{"lower-clamped at 0", 1, 5, 0},
		{"fully allocated", 3, 3, 0},
		{"exactly at ceiling", 6, 0, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeProjectSubmissionTarget(tt.target, tt.allocated); got != tt.want {
				t.Errorf("ComputeProjectSubmissionTarget(%d, %d) = %d, want %d", tt.target, tt.allocated, got, tt.want)
			}
		})
	}
}

func TestAdjusters(t *testing.T) {
	if got := AdjustTarget(3, -1); got != 2 {
		t.Errorf("AdjustTarget(3, -1) = %d, want 2", got)
	}
	if got := AdjustTarget(1, -5); got != 0 {
		t.Errorf("AdjustTarget(1, -5) = %d, want 0 (floored)", got)
	}
	if got := AdjustUpperBound(4, 2); got != 6 {
		t.Errorf("AdjustUpperBound(4, 2) = %d, want 6", got)
	}
	if got := AdjustUpperBound(0, -1); got != 0 {
		t.Errorf("AdjustUpperBound(0, -1) = %d, want 0 (floored)", got)
	}
}
