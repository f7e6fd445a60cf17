package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundPsychological(t *testing.T) {
	cases := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{-100, 0},
		{15000, 15000},
		{15249, 15000},
		{15250, 15500},
		{15500, 15500},
		{15699, 15500},
		{15700, 16000},
		{15999, 16000},
		{999, 1000},
		{27300, 27500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RoundPsychological(tc.in), "RoundPsychological(%d)", tc.in)
	}
}

func TestEndsPsychological(t *testing.T) {
	assert.True(t, EndsPsychological(15000))
	assert.True(t, EndsPsychological(15500))
	assert.True(t, EndsPsychological(14900))
	assert.False(t, EndsPsychological(15300))
	assert.False(t, EndsPsychological(15499))
}
