package parking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLinePayment(t *testing.T) {
	cmd := ParseLine("ABC123 08.00 10.00")
	assert.Equal(t, Command{Kind: KindPayment, Registration: "ABC123", Start: "08.00", End: "10.00"}, cmd)
	assert.Equal(t, MinuteOfDay(480), cmd.At())
}

func TestParseLineQuery(t *testing.T) {
	cmd := ParseLine("  WX1 9.37\t")
	assert.Equal(t, Command{Kind: KindQuery, Registration: "WX1", Start: "9.37"}, cmd)
	assert.Equal(t, MinuteOfDay(577), cmd.At())
}

func TestParseLineAccepted(t *testing.T) {
	lines := []string{
		"ABC123 08.00 10.00",
		" \tABC123   8.00\t10.00  ",
		"ABC123 08.00 10.00\r",
		"A12 20.00",
		"ABCDEFGHIJK 12.00",
		"A0000000000 12.00 13.00",
		"Z99 19.00 08.00",
		"ABC123\v08.00\f10.00",
	}
	for _, line := range lines {
		assert.NotEqual(t, KindMalformed, ParseLine(line).Kind, "%q", line)
	}
}

func TestParseLineRejected(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"abc123 08.00 10.00",
		"1BC123 08.00",
		"AB 08.00",
		"A",
		"ABCDEFGHIJKL 12.00",
		"ABC123",
		"ABC123 07.59",
		"ABC123 7.00",
		"ABC123 20.01",
		"ABC123 21.00",
		"ABC123 12.60",
		"ABC123 12:00",
		"ABC123 12.0",
		"ABC123 012.00",
		"ABC123 08.00 10.00 12.00",
		"ABC123 08.00 10.00 x",
		"ABC-123 08.00",
		"ABC123 08.00x",
		"ABC12308.00",
	}
	for _, line := range lines {
		assert.Equal(t, KindMalformed, ParseLine(line).Kind, "%q", line)
	}
}
