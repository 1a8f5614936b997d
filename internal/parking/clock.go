package parking

import "fmt"

const minutesPerHour = 60

// MinuteOfDay counts minutes since 00:00.
type MinuteOfDay int

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d.%02d", int(m)/minutesPerHour, int(m)%minutesPerHour)
}

// ParseClock decodes a grammar-validated H.MM or HH.MM token. Tokens that did
// not come out of ParseLine are not checked and decode to garbage.
func ParseClock(token string) MinuteOfDay {
	digit := func(i int) int { return int(token[i] - '0') }

	if token[1] == '.' {
		return MinuteOfDay(digit(0)*minutesPerHour + digit(2)*10 + digit(3))
	}
	return MinuteOfDay((digit(0)*10+digit(1))*minutesPerHour + digit(3)*10 + digit(4))
}
