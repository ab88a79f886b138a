package genome

import (
	"fmt"
	"strings"
)

// CenterPad pads a sequence with N on both sides until it reaches length.
// Padding follows the interval resize convention: an odd remainder extends
// the right side. A sequence longer than length is an error, never
// truncated.
func CenterPad(sequence string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidWidth, length)
	}
	if len(sequence) > length {
		return "", fmt.Errorf("%w: sequence length %d exceeds %d", ErrInvalidWidth, len(sequence), length)
	}
	if len(sequence) == length {
		return sequence, nil
	}
	left := (length - len(sequence)) / 2
	right := length - len(sequence) - left
	return strings.Repeat("N", left) + sequence + strings.Repeat("N", right), nil
}
