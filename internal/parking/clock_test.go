package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := map[string]MinuteOfDay{
		"08.00": 480,
		"8.00":  480,
		"9.37":  577,
		"13.05": 785,
		"19.59": 1199,
		"20.00": 1200,
	}
	for token, want := range tests {
		assert.Equal(t, want, ParseClock(token), token)
	}
}

func TestMinuteOfDayString(t *testing.T) {
	assert.Equal(t, "08.00", MinuteOfDay(480).String())
	assert.Equal(t, "09.37", MinuteOfDay(577).String())
	assert.Equal(t, "20.00", MinuteOfDay(1200).String())
}
