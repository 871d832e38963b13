package bounty

import (
	"strconv"
	"strings"

	"github.com/abristow3/Hunt-Bot/internal/domain"
)

// ParseReward turns a reward string into its numeric value. Digits may carry
// a k/K (thousand) or m/M (million) suffix; negative and non-numeric input
// is rejected.
func ParseReward(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	multiplier := 1.0

	switch {
	case strings.HasSuffix(strings.ToLower(s), "k"):
		multiplier = 1_000
		s = s[:len(s)-1]
	case strings.HasSuffix(strings.ToLower(s), "m"):
		multiplier = 1_000_000
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &domain.Error{
			Kind:    domain.KindBadReward,
			Message: "Reward amount must be a number (optionally with 'K' for thousand or 'M' for million).",
			Context: map[string]any{"input": raw},
		}
	}
	if value < 0 {
		return 0, &domain.Error{
			Kind:    domain.KindBadReward,
			Message: "Reward amount cannot be negative.",
			Context: map[string]any{"input": raw},
		}
	}

	return value * multiplier, nil
}
