package bounty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abristow3/Hunt-Bot/internal/domain"
)

func TestParseReward_Shorthand(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"10k", 10_000},
		{"10K", 10_000},
		{"2.5M", 2_500_000},
		{"1m", 1_000_000},
		{"500", 500},
		{" 750 ", 750},
		{"0.5k", 500},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseReward(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseReward_Rejects(t *testing.T) {
	for _, input := range []string{"abc", "-5", "-2k", "k", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseReward(input)
			require.Error(t, err)
			assert.Equal(t, domain.KindBadReward, domain.KindOf(err))
		})
	}
}
