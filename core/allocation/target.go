package allocation

// Fixed business policy; see the student handbook, not derived from anything.
const (
	submissionTargetFactor  = 2
	submissionTargetCeiling = 12
)

// ComputeProjectSubmissionTarget converts a supervisor's allocation target and
// current allocated count into the number of projects they are asked to submit:
// clamp(2 * (target - allocated), 0, 12).
func ComputeProjectSubmissionTarget(allocationTarget, allocatedCount int) int {
	target := submissionTargetFactor * (allocationTarget - allocatedCount)
	if target < 0 {
		return 0
	}
	if target > submissionTargetCeiling {
		return submissionTargetCeiling
	}
	return target
}

// AdjustTarget applies a delta to an allocation target, flooring at zero.
func AdjustTarget(base, delta int) int {
	if adjusted := base + delta; adjusted > 0 {
		return adjusted
	}
	return 0
}

// AdjustUpperBound applies a delta to an allocation upper bound, flooring at zero.
func AdjustUpperBound(base, delta int) int {
	if adjusted := base + delta; adjusted > 0 {
		return adjusted
	}
	return 0
}
