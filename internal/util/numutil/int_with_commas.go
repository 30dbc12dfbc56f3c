package numutil

import "strconv"

// IntWithCommas returns a string representation of an integer with commas
// between every group of three digits.
//
// Example:
//
//	12345 -> "12,345"
func IntWithCommas[T ~int | ~int32 | ~int64](i T) string {
	digits := strconv.FormatInt(int64(i), 10)

	sign := ""
	if digits[0] == '-' {
		sign, digits = "-", digits[1:]
	}

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}

	out := digits[:head]
	for rest := digits[head:]; len(rest) > 0; rest = rest[3:] {
		out += "," + rest[:3]
	}
	return sign + out
}
