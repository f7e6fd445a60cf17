package pricing

// Psychological price points end in 000, 500 or 900: perceptually "clean"
// rupiah amounts a menu can actually print.

// RoundPsychological snaps a computed price onto the nearest clean point
// using thirds-of-a-thousand buckets: a remainder under 250 drops to the
// thousand, 250–699 lands on x500, 700 and up climbs to the next thousand.
func RoundPsychological(price int64) int64 {
	if price <= 0 {
		return 0
	}
	base := price / 1000 * 1000
	remainder := price % 1000
	switch {
	case remainder < 250:
		return base
	case remainder < 700:
		return base + 500
	default:
		return base + 1000
	}
}

// EndsPsychological reports whether a price already sits on a clean ending.
func EndsPsychological(price int64) bool {
	switch price % 1000 {
	case 0, 500, 900:
		return true
	}
	return false
}
