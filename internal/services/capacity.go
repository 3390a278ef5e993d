package services

// RecomputeAvailable derives the new available seat count after an admin
// changes total capacity. The number of seats already held is preserved; when
// the new total drops below the held count, availability floors at zero
// rather than going negative.
func RecomputeAvailable(oldTotal, oldAvailable, newTotal int) int {
	used := oldTotal - oldAvailable
	if used < 0 {
		used = 0
	}
	available := newTotal - used
	if available < 0 {
		return 0
	}
	return available
}
